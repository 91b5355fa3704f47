package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/handler/middleware"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

const (
	fieldNameID     = "id"
	fieldNameUserID = "user_id"
	fieldNameTable  = "table"

	maxBodyBytes = 1 << 20
)

var (
	errInvalidID   = apperrors.Validation("Invalid id")
	errInvalidBody = apperrors.Validation("Invalid request body")
	errNoSession   = apperrors.Unauthorized("Unauthorized")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// decodeJSON reads the body into dst and runs its validate tags.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidBody
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return apperrors.Validation(validationMessage(ve[0]))
		}
		return errInvalidBody
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

// currentUser returns the caller's id. Routes behind CheckAuth always have one.
func currentUser(r *http.Request) (uuid.UUID, error) {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return uuid.Nil, errNoSession
	}
	return c.UserID, nil
}

type createFileRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type updateFileRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type fileRefRequest struct {
	FileID uuid.UUID `json:"fileId" validate:"required"`
}

type shareRequest struct {
	FileID     uuid.UUID `json:"fileId" validate:"required"`
	Identifier string    `json:"identifier" validate:"required"`
	Permission string    `json:"permission" validate:"required"`
}

type permissionRequest struct {
	Permission string `json:"permission" validate:"required"`
}

type friendRequest struct {
	Identifier string    `json:"identifier"`
	FriendID   uuid.UUID `json:"friendId"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=128"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=32"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=128"`
	Username        *string `json:"username" validate:"omitempty,max=64"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	Password        *string `json:"password" validate:"omitempty,min=8,max=72"`
	CurrentPassword *string `json:"currentPassword"`
}

// target resolves the caller and the {id} path value.
func target(r *http.Request) (userID, id uuid.UUID, err error) {
	if userID, err = currentUser(r); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err = pathUUID(r, fieldNameID)
	return userID, id, err
}
