// Package validator decodes request bodies and checks them against struct
// tags, turning the first failed rule into a 400 Failure.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"restobook/shared/clock"
	"restobook/shared/constant"
	"restobook/shared/failure"
	"slices"
	"strconv"
	"strings"
	"time"

	val "github.com/go-playground/validator/v10"
)

const bytesPerMB = 1 << 20

var validate = newValidate()

var rules = map[string]val.Func{
	"clock": func(field val.FieldLevel) bool {
		return clock.Valid(field.Field().String())
	},
	"date": func(field val.FieldLevel) bool {
		_, err := time.Parse(constant.DateOnlyFormat, field.Field().String())

		return err == nil
	},
	"mimetypes": func(field val.FieldLevel) bool {
		file, ok := fileHeader(field)

		return ok && slices.Contains(strings.Fields(field.Param()), file.Header.Get(constant.RequestHeaderContentType))
	},
	"maxfilesize": func(field val.FieldLevel) bool {
		file, ok := fileHeader(field)
		if !ok {
			return false
		}

		limit, err := strconv.ParseFloat(field.Param(), 64)

		return err == nil && float64(file.Size) <= limit*bytesPerMB
	},
}

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	return v
}

func fileHeader(field val.FieldLevel) (multipart.FileHeader, bool) {
	switch file := field.Field().Interface().(type) {
	case multipart.FileHeader:
		return file, true
	case *multipart.FileHeader:
		if file != nil {
			return *file, true
		}
	}

	return multipart.FileHeader{}, false
}

// Validate decodes a JSON body into data and validates it.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		if errors.Is(err, io.EOF) {
			return failure.BadRequestFromString("request body is required") //nolint:wrapcheck
		}

		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	return check(validate.Struct(data))
}

func ValidateVar(field any, tag string) error {
	return check(validate.Var(field, tag))
}

func check(err error) error {
	if err == nil {
		return nil
	}

	return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
}
