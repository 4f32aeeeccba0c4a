package dto

// NotePayload carries the writable note fields. Both the JSON body and the
// multipart form bind into it; the image file itself travels separately.
type NotePayload struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
