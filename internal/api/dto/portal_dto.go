package dto

// AuthForm is submitted by the combined entry view. Mode is "login" or "signup".
type AuthForm struct {
	Mode     string `json:"mode" form:"mode"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Phone    string `json:"phone" form:"phone"`
}

// LoginForm is submitted by the per-role login views.
type LoginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// OTPForm is submitted by the OTP view.
type OTPForm struct {
	OTP string `json:"otp" form:"otp"`
}

// PasswordForm is submitted by the create-password view.
type PasswordForm struct {
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
}

// ChatForm is submitted by the dashboard chat box.
type ChatForm struct {
	Message string `json:"message" form:"message"`
}

// DoctorForm is submitted by the admin dashboard.
type DoctorForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}
