package handler

// credentialsRequest is the body of /register and /login.
type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=128" example:"alice"`
	Password string `json:"password" validate:"required,max=1024" example:"correct-horse"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required,max=1024" example:"correct-horse"`
	NewPassword string `json:"new_password" validate:"required,max=1024" example:"batt3ry"`
}

type principalResponse struct {
	Username string `json:"username" example:"alice"`
}

type messageResponse struct {
	Message string `json:"message" example:"logged out"`
}

// errorResponse documents the envelope rendered by the HTTP error handler.
type errorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}
