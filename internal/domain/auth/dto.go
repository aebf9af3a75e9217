// internal/domain/auth/dto.go
package auth

// SignUpRequest for account registration
type SignUpRequest struct {
	ID       string `json:"id" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required,max=50"`
	Nickname string `json:"nickname" binding:"required,max=30"`
	Phone    string `json:"phone" binding:"required,number,min=11,max=13"`
	Email    string `json:"email" binding:"required,email"`
	Gender   string `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
}

// ValidateIDRequest is the live duplicate-id pre-check
type ValidateIDRequest struct {
	ID string `json:"id" binding:"required,max=50"`
}

// SignInRequest for credential sign-in
type SignInRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignInResponse carries the bearer token and its lifetime in seconds
type SignInResponse struct {
	Token          string `json:"token"`
	ExpirationTime int    `json:"expirationTime"`
}

// PatchProfileRequest for profile updates; omitted fields are left unchanged.
// An empty avatar_url clears the avatar.
type PatchProfileRequest struct {
	Nickname  *string `json:"nickname" binding:"omitempty,min=1,max=30"`
	Phone     *string `json:"phone" binding:"omitempty,number,min=11,max=13"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Gender    *string `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,eq=|url"`
}

// ToPatch converts the request into a domain patch.
func (r *PatchProfileRequest) ToPatch() ProfilePatch {
	return ProfilePatch{
		Nickname:  r.Nickname,
		Phone:     r.Phone,
		Email:     r.Email,
		Gender:    r.Gender,
		AvatarURL: r.AvatarURL,
	}
}

// ChangePasswordRequest for password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangeRoleRequest for promotion; only ADMIN is accepted
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN"`
}

// UserInfo is the public view of an identity
type UserInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Nickname  string `json:"nickname"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Gender    string `json:"gender"`
	AvatarURL string `json:"avatar_url"`
	Seq       int64  `json:"seq"`
	Role      Role   `json:"role"`
	Status    Status `json:"status"`
}

// NewUserInfo strips credential material from identity.
func NewUserInfo(identity *Identity) UserInfo {
	return UserInfo{
		ID:        identity.ID,
		Name:      identity.Name,
		Nickname:  identity.Nickname,
		Phone:     identity.Phone,
		Email:     identity.Email,
		Gender:    identity.Gender,
		AvatarURL: identity.AvatarURL,
		Seq:       identity.Seq,
		Role:      identity.Role,
		Status:    identity.Status,
	}
}
