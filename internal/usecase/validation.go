package usecase

import (
	"errors"
	"strings"

	"marketplace-backend/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var fieldMessages = map[string]string{
	"required": "Trường này là bắt buộc",
	"numeric":  "Chỉ được nhập số",
	"len":      "Độ dài không hợp lệ",
	"min":      "Giá trị quá ngắn hoặc quá nhỏ",
	"max":      "Giá trị quá dài hoặc quá lớn",
	"gt":       "Giá trị phải lớn hơn 0",
	"url":      "Đường dẫn không hợp lệ",
	"oneof":    "Giá trị không hợp lệ",
}

// validationErr turns validator errors into per-field messages keyed by JSON-ish field name.
func validationErr(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.InvalidErr("Dữ liệu không hợp lệ", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "Giá trị không hợp lệ"
		}
		fields[lowerFirst(fe.Field())] = msg
	}
	return apperr.InvalidErr("Dữ liệu không hợp lệ", fields)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
