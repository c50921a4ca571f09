package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"centavo/internal/core"
	"centavo/internal/services"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Optional distinguishes an absent JSON field from an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// decodeJSON reads a JSON body into dst and runs its validate tags.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("request body is empty")
		case errors.Is(err, core.ErrInvalidAmount):
			return core.NewValidationError("amount", core.ErrInvalidAmount.Error())
		}
		var parseErr *time.ParseError
		if errors.As(err, &parseErr) {
			return core.NewValidationError("date", "must be YYYY-MM-DD")
		}
		return badRequest("invalid JSON body: " + err.Error())
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &core.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), describeTag(fe))
	}
	return ve
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte", "lte":
		return "is out of range"
	case "hexcolor":
		return "must be a hex color like #6366f1"
	}
	return "is invalid"
}

// queryInt reads a positive integer query parameter, returning def when
// absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, core.NewValidationError(key, "must be a positive integer")
	}
	return n, nil
}

func queryDate(r *http.Request, key string) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, core.NewValidationError(key, "must be YYYY-MM-DD")
	}
	return d, nil
}

func queryType(r *http.Request) (*core.TransactionType, error) {
	v := strings.TrimSpace(r.URL.Query().Get("type"))
	if v == "" {
		return nil, nil
	}
	t, err := core.ParseTransactionType(v)
	if err != nil {
		return nil, core.NewValidationError("type", err.Error())
	}
	return &t, nil
}

// parseListQuery reads the transaction list filters and pagination.
func parseListQuery(r *http.Request) (f services.ListFilter, page, pageSize int, err error) {
	if page, err = queryInt(r, "page", 1); err != nil {
		return
	}
	if pageSize, err = queryInt(r, "page_size", services.DefaultPageSize); err != nil {
		return
	}
	if pageSize > services.MaxPageSize {
		err = core.NewValidationError("page_size", fmt.Sprintf("must be at most %d", services.MaxPageSize))
		return
	}
	typ, err := queryType(r)
	if err != nil {
		return
	}
	if typ != nil {
		f.Type = *typ
	}
	f.CategoryID = strings.TrimSpace(r.URL.Query().Get("category_id"))
	if f.Start, err = queryDate(r, "start_date"); err != nil {
		return
	}
	f.End, err = queryDate(r, "end_date")
	return
}

// parseYearMonth reads year and month, defaulting to the current month.
func parseYearMonth(r *http.Request, now time.Time) (year, month int, err error) {
	if year, err = queryInt(r, "year", now.Year()); err != nil {
		return
	}
	month, err = queryInt(r, "month", int(now.Month()))
	return
}
