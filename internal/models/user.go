package models

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"created_at"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserLookup is the payload returned by users/find
type UserLookup struct {
	ID     string `json:"id"`
	Exists bool   `json:"exists"`
}

type UsersResponse = APIResponse[[]User]

type UserLookupResponse = APIResponse[UserLookup]
