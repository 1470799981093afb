package v1

import (
	"context"
	"fmt"
	"net/http"

	"axiapac.com/timeclock/timeclock/v1/common"
	"axiapac.com/timeclock/timeclock/v1/common/role"
)

type UserDTO struct {
	ID           string           `json:"id" validate:"required"`
	Username     string           `json:"username" validate:"required"`
	Email        string           `json:"email"`
	Role         role.Role        `json:"role" validate:"omitempty,oneof=admin office field"`
	ProfilePhoto *string          `json:"profile_photo,omitempty"`
	CreatedAt    common.Timestamp `json:"created_at"`
}

type ProfileUpdate struct {
	Username  string
	Email     string
	Photo     []byte
	PhotoName string
}

type PasswordChange struct {
	OldPassword string `json:"old_password,omitempty"`
	NewPassword string `json:"new_password"`
}

type UserEndpoint struct {
	transport *Transport
}

func (e *UserEndpoint) Me(ctx context.Context) (*UserDTO, error) {
	const path = "/users/me"
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[UserDTO](resp, path)
}

func (e *UserEndpoint) UpdateMe(ctx context.Context, update ProfileUpdate) (*UserDTO, error) {
	const path = "/users/me"
	form := &Form{}
	form.SetOptional("username", update.Username).SetOptional("email", update.Email)
	if len(update.Photo) > 0 {
		form.File("profile_photo", update.PhotoName, update.Photo)
	}
	resp, err := e.transport.SendForm(ctx, http.MethodPut, path, form)
	if err != nil {
		return nil, err
	}
	return decodeOne[UserDTO](resp, path)
}

func (e *UserEndpoint) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := e.transport.Put(ctx, "/users/me/password", PasswordChange{OldPassword: oldPassword, NewPassword: newPassword})
	return err
}

type NewUser struct {
	Username string
	Email    string
	Password string
	Role     role.Role
}

type AdminUserEndpoint struct {
	transport *Transport
}

func (e *AdminUserEndpoint) List(ctx context.Context) ([]UserDTO, error) {
	const path = "/admin/users"
	resp, err := e.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[UserDTO](resp, path)
}

func (e *AdminUserEndpoint) Create(ctx context.Context, user NewUser) (*UserDTO, error) {
	const path = "/admin/users"
	form := &Form{}
	form.Set("username", user.Username).
		Set("email", user.Email).
		Set("password", user.Password).
		Set("role", string(user.Role))
	resp, err := e.transport.SendForm(ctx, http.MethodPost, path, form)
	if err != nil {
		return nil, err
	}
	return decodeOne[UserDTO](resp, path)
}

// Update changes the non-empty fields of a user.
func (e *AdminUserEndpoint) Update(ctx context.Context, id string, username, email string, r role.Role) (*UserDTO, error) {
	path := fmt.Sprintf("/admin/users/%s", id)
	form := &Form{}
	form.SetOptional("username", username).
		SetOptional("email", email).
		SetOptional("role", string(r))
	resp, err := e.transport.SendForm(ctx, http.MethodPut, path, form)
	if err != nil {
		return nil, err
	}
	return decodeOne[UserDTO](resp, path)
}

func (e *AdminUserEndpoint) Delete(ctx context.Context, id string) error {
	_, err := e.transport.Delete(ctx, fmt.Sprintf("/admin/users/%s", id))
	return err
}

func (e *AdminUserEndpoint) ChangePassword(ctx context.Context, id, newPassword string) error {
	_, err := e.transport.Put(ctx, fmt.Sprintf("/admin/users/%s/password", id), PasswordChange{NewPassword: newPassword})
	return err
}
