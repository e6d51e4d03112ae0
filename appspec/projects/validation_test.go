package projects

import (
	"strings"
	"testing"

	apperrors "codeberg.org/appspec/server/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidateStruct_RequiredFields(t *testing.T) {
	err := validateStruct(CreateProjectRequest{})

	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "description is required")
}

func TestValidateStruct_Bounds(t *testing.T) {
	negative := int64(-1)

	err := validateStruct(CreateProjectRequest{
		Name:        strings.Repeat("n", 101),
		Description: "ok",
		Requirements: Requirements{
			Entities: []string{strings.Repeat("e", 101)},
		},
		Metadata: MetadataInput{Category: "games", Likes: &negative},
	})

	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "name must be at most 100")
	assert.Contains(t, err.Error(), "requirements.entities[0] must be at most 100")
	assert.Contains(t, err.Error(), "metadata.category must be one of")
	assert.Contains(t, err.Error(), "metadata.likes must be at least 0")
}

func TestValidateStruct_Valid(t *testing.T) {
	err := validateStruct(CreateProjectRequest{
		Name:        "Test App",
		Description: "desc",
		Metadata:    MetadataInput{Category: CategoryFinance},
	})
	assert.NoError(t, err)
}

func TestAsValidation_IgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, AsValidation(assert.AnError))
}
