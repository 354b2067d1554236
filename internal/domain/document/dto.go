package document

import "github.com/bpo-ops/ops-backend-go/internal/pkg/validator"

type SaveFormRequest struct {
	DocumentTitle    string `json:"documentTitle"`
	Date             string `json:"date"`
	PreparedBy       string `json:"preparedBy"`
	ClientName       string `json:"clientName"`
	Category         string `json:"category"`
	DescriptionNotes string `json:"descriptionNotes"`
}

func (r *SaveFormRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.DocumentTitle) {
		errs.Add("documentTitle", "documentTitle is required")
	}
	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}
	return errs.OrNil()
}

// GeneratedDocument mirrors the builder's reply.
type GeneratedDocument struct {
	Success  bool   `json:"success"`
	FileName string `json:"fileName"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}
