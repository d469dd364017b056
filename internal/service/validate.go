package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "staffdesk/pkg/errors"
)

// validate 以表单字段名作为错误 key 的共享校验器
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	// integer: 可解析为 int64 的十进制整数（允许负号，非负约束另行校验）
	_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		_, err := strconv.ParseInt(fl.Field().String(), 10, 64)
		return err == nil
	})
	return v
}

// validateStruct 执行 tag 校验并转为字段级错误
func validateStruct(obj interface{}) *apperrors.ValidationError {
	ve := apperrors.NewValidationError()
	err := validate.Struct(obj)
	if err == nil {
		return ve
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("input", err.Error())
		return ve
	}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	attr := attributeName(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, fe.Param())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", attr)
	case "integer":
		return fmt.Sprintf("The %s field must be an integer.", attr)
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}

func attributeName(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// optionalString 空串按 NULL 处理
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
