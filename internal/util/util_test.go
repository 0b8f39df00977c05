package util

import (
	"bytes"
	"image/color"
	"io"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: title", ErrValidation), http.StatusBadRequest},
		{ErrMissingFields, http.StatusBadRequest},
		{ErrAlreadyEnrolled, http.StatusBadRequest},
		{ErrPaymentRequired, http.StatusBadRequest},
		{ErrInvalidVideoExt, http.StatusBadRequest},
		{ErrInvalidFileType, http.StatusBadRequest},
		{ErrAttemptsExhausted, http.StatusConflict},
		{ErrConfirmationRequired, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			HandleServiceError(c, tt.err)

			assert.Equal(t, tt.want, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Code)
		})
	}
}

func TestValidateMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	mime, err := ValidateMimeType(bytes.NewReader(png), []string{MimeImage})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = ValidateMimeType(strings.NewReader("plain text"), []string{MimeImage})
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("lesson.MP4", AllowedVideoExtensions))
	assert.False(t, HasExtension("lesson.exe", AllowedVideoExtensions))
	assert.False(t, HasExtension("lesson", AllowedVideoExtensions))
}

func TestObjectName(t *testing.T) {
	a := ObjectName("videos", "Intro.MOV")
	b := ObjectName("videos", "Intro.MOV")

	assert.True(t, strings.HasPrefix(a, "videos/"))
	assert.True(t, strings.HasSuffix(a, ".mov"))
	assert.NotEqual(t, a, b)
}

func TestJWTRoundTrip(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	tok, err := GenerateJWT("user-1", "u@example.com", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	_, err = ParseJWT(tok, "wrong-secret")
	assert.Error(t, err)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG))
	return buf.Bytes()
}

func TestFitImage(t *testing.T) {
	large := encodePNG(t, 2000, 1000)
	r, size, err := FitImage(bytes.NewReader(large), "cover.png", CoverMaxWidth, CoverMaxHeight)
	require.NoError(t, err)

	img, err := imaging.Decode(r)
	require.NoError(t, err)
	assert.Equal(t, 1280, img.Bounds().Dx())
	assert.Equal(t, 640, img.Bounds().Dy())
	assert.Positive(t, size)

	small := encodePNG(t, 100, 50)
	r, size, err = FitImage(bytes.NewReader(small), "cover.png", CoverMaxWidth, CoverMaxHeight)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, small, got)
	assert.Equal(t, int64(len(small)), size)

	_, _, err = FitImage(strings.NewReader("not an image"), "cover.png", CoverMaxWidth, CoverMaxHeight)
	assert.ErrorIs(t, err, ErrInvalidFileType)

	r, _, err = FitImage(strings.NewReader("webp bytes"), "cover.webp", CoverMaxWidth, CoverMaxHeight)
	require.NoError(t, err)
	got, _ = io.ReadAll(r)
	assert.Equal(t, "webp bytes", string(got))
}
