package finding

import (
	"fmt"

	"github.com/qmshub/api/pkg/domain/shared"
)

// Tag links a finding to another domain object (a norm, a document, a
// process). The composite (finding, type, target) is unique.
type Tag struct {
	FindingID shared.ID
	Type      TagType
	TagID     shared.ID
}

// NewTag creates a validated tag.
func NewTag(findingID shared.ID, tagType TagType, tagID shared.ID) (Tag, error) {
	if findingID.IsZero() {
		return Tag{}, fmt.Errorf("%w: finding ID is required", shared.ErrValidation)
	}
	if !tagType.IsValid() {
		return Tag{}, fmt.Errorf("%w: invalid tag type", shared.ErrValidation)
	}
	if tagID.IsZero() {
		return Tag{}, fmt.Errorf("%w: tag ID is required", shared.ErrValidation)
	}
	return Tag{FindingID: findingID, Type: tagType, TagID: tagID}, nil
}
