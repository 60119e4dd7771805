package dto

import "github.com/bings/visallo/internal/core/domain"

// PublishRequest is a batch of sandboxed changes to promote to public visibility.
type PublishRequest struct {
	Items []domain.PublishItem `json:"items" binding:"required,min=1,dive"`
}

// PublishResponseDTO reports the per-item outcome of a publish batch.
type PublishResponseDTO struct {
	Success  bool                    `json:"success"`
	Failures []domain.PublishFailure `json:"failures"`
}

// ToPublishResponse converts the domain publish outcome to DTO.
func ToPublishResponse(r domain.PublishResponse) PublishResponseDTO {
	return PublishResponseDTO{
		Success:  r.Success(),
		Failures: r.Failures,
	}
}
