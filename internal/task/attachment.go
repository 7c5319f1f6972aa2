package task

import (
	"encoding/base64"
	"regexp"

	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
)

var dataURIPattern = regexp.MustCompile(`^data:(?P<mime>[^;]+);base64,(?P<b64>.+)$`)

// DecodeAttachment decodes a data:<mime>;base64,<payload> URI into raw bytes.
func DecodeAttachment(a Attachment) ([]byte, error) {
	m := dataURIPattern.FindStringSubmatch(a.DataURI())
	if m == nil {
		return nil, errors.ValidationError("malformed attachment data URI").
			WithContext("attachment", a.Name)
	}
	raw, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "attachment base64 decode failed").
			WithContext("attachment", a.Name)
	}
	return raw, nil
}
