package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report json field names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// trimmer is implemented by requests whose fields are trimmed before validation
type trimmer interface {
	trim()
}

// bindJSON binds the body into req and writes a 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if t, ok := req.(trimmer); ok && err == nil {
		t.trim()
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fieldMessage(fe)
		}
		ValidationFailed(c, fields)
		return false
	}
	if errors.Is(err, io.EOF) {
		BadRequest(c, "request body is empty")
		return false
	}
	BadRequest(c, SafeErrorMessage(err, "malformed request body"))
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	default:
		return fe.Field() + " is invalid"
	}
}

// parseID reads a positive numeric path parameter, writing 404 when it is not one
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		NotFound(c, "not found")
		return 0, false
	}
	return uint(id), true
}

// readUpload reads the multipart "file" field, bounded by maxBytes
func readUpload(c *gin.Context, maxBytes int64) ([]byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		ValidationFailed(c, map[string]string{"file": "file is required"})
		return nil, false
	}
	if maxBytes > 0 && header.Size > maxBytes {
		ValidationFailed(c, map[string]string{"file": fmt.Sprintf("file exceeds %d bytes", maxBytes)})
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to read upload"))
		return nil, false
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to read upload"))
		return nil, false
	}
	return data, true
}

// PriceText accepts a price as JSON string or number and keeps the literal text so it
// is parsed without going through float64
type PriceText string

// UnmarshalJSON implements json.Unmarshaler
func (p *PriceText) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PriceText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("price must be a number or a string")
	}
	*p = PriceText(n.String())
	return nil
}

func (p *PriceText) stringPtr() *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}
