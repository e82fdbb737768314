package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirin765/naver-smartstore/internal/models"
)

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid generation request", func(t *testing.T) {
		req := models.GenerationRequest{
			ProductName: "무선 블루투스 이어폰",
			Keywords:    []string{"블루투스"},
			Tone:        models.ToneFriendly,
			Type:        models.GenerationTitle,
		}
		assert.NoError(t, vh.ValidateStruct(&req))
	})

	t.Run("missing product name and bad tone", func(t *testing.T) {
		req := models.GenerationRequest{Tone: "sarcastic", Type: models.GenerationFull}

		err := vh.ValidateStruct(&req)
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		assert.Len(t, validationErrors, 2)
		fields := []string{validationErrors[0].Field(), validationErrors[1].Field()}
		assert.ElementsMatch(t, []string{"productName", "tone"}, fields)
	})

	t.Run("unknown generation type", func(t *testing.T) {
		req := models.GenerationRequest{ProductName: "머그컵", Type: "poem"}

		err := vh.ValidateStruct(&req)
		require.Error(t, err)
		validationErrors := err.(validator.ValidationErrors)
		assert.Equal(t, "oneof", validationErrors[0].Tag())
	})

	t.Run("too many keywords", func(t *testing.T) {
		keywords := make([]string, 21)
		for i := range keywords {
			keywords[i] = fmt.Sprintf("k%d", i)
		}
		req := models.GenerationRequest{ProductName: "머그컵", Keywords: keywords, Type: models.GenerationTags}

		err := vh.ValidateStruct(&req)
		require.Error(t, err)
		validationErrors := err.(validator.ValidationErrors)
		assert.Equal(t, "keywords", validationErrors[0].Field())
		assert.Equal(t, "max", validationErrors[0].Tag())
	})

	t.Run("negative price", func(t *testing.T) {
		price := int64(-1)
		err := vh.ValidateStruct(&models.ProductInput{ProductName: "머그컵", Price: &price})
		assert.Error(t, err)
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("error response with validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := NewValidationHelper().ValidateStruct(&models.ProductInput{})

		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Field Validation Failed on 'required' tag", response.Details["productName"])
	})

	t.Run("non validation error is not expanded", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Bad", http.StatusBadRequest, fmt.Errorf("plain"))

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Nil(t, response.Details)
	})
}
