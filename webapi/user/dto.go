package user

// NewUser represents the request body for creating a new user.
type NewUser struct {
	Email string `json:"email" xml:"email" form:"email" validate:"required,email,max=255"`
	Names string `json:"names" xml:"names" form:"names" validate:"max=255"`
}

// NewAccount represents the request body for opening an account for a user.
type NewAccount struct {
	HolderName string `json:"holder_name" xml:"holder_name" form:"holder_name" validate:"required,max=255"`
}
