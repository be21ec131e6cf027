package user

type CreateUserRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=120"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	Role      *string `json:"role,omitempty"`
	ManagerID *string `json:"managerId,omitempty"`
}

type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type ListQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}
