package api

// Image is the public JSON shape of a gallery image
type Image struct {
	ID     string `json:"id"`
	Src    string `json:"src"`
	Name   string `json:"name"`
	Author Author `json:"author"`
}

type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// RenameRequest is the body of PUT /api/images/:id
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
