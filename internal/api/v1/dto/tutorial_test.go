package dto

import (
	"encoding/json"
	"testing"

	"tutorials/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFromModel(t *testing.T) {
	in := model.Tutorial{ID: 3, Title: "Kafka", Description: strPtr("Apache Kafka")}
	out := FromModel(in)

	require.Equal(t, int64(3), *out.ID)
	require.Equal(t, "Kafka", out.Title)
	require.Equal(t, "Apache Kafka", *out.Description)

	*out.Description = "changed"
	require.Equal(t, "Apache Kafka", *in.Description, "mapping must not alias the model")
}

func TestFromModelUnsetFieldsEncodeAsNull(t *testing.T) {
	b, err := json.Marshal(FromModel(model.Tutorial{}))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":null,"title":"","description":null}`, string(b))
}

func TestFromModelsPreservesOrder(t *testing.T) {
	in := []model.Tutorial{{ID: 2, Title: "JSP"}, {ID: 1, Title: "JDBC"}}
	out := FromModels(in)
	require.Len(t, out, 2)
	require.Equal(t, "JSP", out[0].Title)
	require.Equal(t, "JDBC", out[1].Title)

	empty := FromModels(nil)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestToModel(t *testing.T) {
	require.Nil(t, ToModel(nil))

	var in TutorialDTO
	require.NoError(t, json.Unmarshal([]byte(`{"id":9,"title":"JSF","description":"JavaServer Faces"}`), &in))
	out := ToModel(&in)
	require.Equal(t, &model.Tutorial{ID: 9, Title: "JSF", Description: strPtr("JavaServer Faces")}, out)

	out = ToModel(&TutorialDTO{Title: "JSF"})
	require.Zero(t, out.ID)
	require.Nil(t, out.Description)
}

func TestTutorialDTOValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	require.NoError(t, validate.Struct(&TutorialDTO{Title: "JSF"}))
	require.Error(t, validate.Struct(&TutorialDTO{Description: strPtr("no title")}))
}
