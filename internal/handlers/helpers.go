package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/recipeplanner/backend/internal/models"
	"github.com/recipeplanner/backend/internal/storage"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// parseIngredients accepts either a JSON array (structured entries or
// bare strings) or free text with one ingredient per line. A payload
// that looks like JSON but does not parse is an error rather than being
// silently treated as one long ingredient name.
func parseIngredients(raw string) ([]models.Ingredient, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []models.Ingredient{}, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var structured []models.Ingredient
		if err := json.Unmarshal([]byte(trimmed), &structured); err == nil {
			return structured, nil
		}
		var names []string
		if err := json.Unmarshal([]byte(trimmed), &names); err == nil {
			out := make([]models.Ingredient, 0, len(names))
			for _, name := range names {
				out = append(out, models.Ingredient{Name: name})
			}
			return out, nil
		}
		return nil, fmt.Errorf("invalid ingredients JSON")
	}

	lines := splitLines(trimmed)
	out := make([]models.Ingredient, 0, len(lines))
	for _, line := range lines {
		out = append(out, models.Ingredient{Name: line})
	}
	return out, nil
}

// parseSteps accepts a JSON array of strings or free text with one step
// per line.
func parseSteps(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var steps []string
		if err := json.Unmarshal([]byte(trimmed), &steps); err != nil {
			return nil, fmt.Errorf("invalid steps JSON")
		}
		return steps, nil
	}

	return splitLines(trimmed), nil
}

func splitLines(value string) []string {
	var out []string
	for _, line := range strings.Split(value, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseBoolValue reads form booleans sent as "true"/"false" strings.
// Returns set=false when the field was absent.
func parseBoolValue(raw string) (value bool, set bool) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// normalizePhone strips non-digits and enforces the 10-digit rule.
func normalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() != 10 {
		return "", fmt.Errorf("phone must be 10 digits")
	}
	return digits.String(), nil
}

// uploadMedia sends one multipart file to the media host and returns the
// public URL plus the object name (kept for cleanup if persistence
// later fails). The request aborts with an upstream error when no media
// store is configured.
func uploadMedia(c *fiber.Ctx, media *storage.MediaStore, folder string, fileHeader *multipart.FileHeader) (url string, objectName string, err error) {
	if media == nil {
		return "", "", fmt.Errorf("media storage not configured")
	}

	stream, err := fileHeader.Open()
	if err != nil {
		return "", "", err
	}
	defer stream.Close()

	filename := filepath.Base(strings.TrimSpace(fileHeader.Filename))
	if filename == "" {
		filename = "upload"
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName = fmt.Sprintf("%s/%s/%s", folder, uuid.New().String(), filename)
	if err := media.Upload(c.Context(), objectName, stream, fileHeader.Size, contentType); err != nil {
		return "", "", err
	}

	return media.PublicURL(objectName), objectName, nil
}

// formValue reports a form field's value and whether the field was sent
// at all, so partial updates can distinguish "absent" from "empty".
func formValue(c *fiber.Ctx, key string) (string, bool) {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		values, ok := form.Value[key]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	}
	if c.Request().PostArgs().Has(key) {
		return string(c.Request().PostArgs().Peek(key)), true
	}
	return "", false
}

func formFiles(form *multipart.Form, key string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	return form.File[key]
}

func firstFormFile(form *multipart.Form, key string) *multipart.FileHeader {
	files := formFiles(form, key)
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
