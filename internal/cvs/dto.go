package cvs

import "time"

// CVResponse is the API shape of a CV record.
type CVResponse struct {
	ID                    string     `json:"id"`
	UserID                *string    `json:"userId,omitempty"`
	OriginalFileName      string     `json:"originalFileName"`
	DocumentType          string     `json:"documentType"`
	FileSize              int64      `json:"fileSize"`
	Checksum              string     `json:"checksum,omitempty"`
	PhotoURL              string     `json:"photoUrl,omitempty"`
	Status                string     `json:"status"`
	ProcessingStartedAt   *time.Time `json:"processingStartedAt,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processingCompletedAt,omitempty"`
	ProcessingError       string     `json:"processingError,omitempty"`
	LLMProvider           string     `json:"llmProvider,omitempty"`
	LLMModel              string     `json:"llmModel,omitempty"`
	ExtractionVersion     string     `json:"extractionVersion,omitempty"`
	ConfidenceScore       *float64   `json:"confidenceScore,omitempty"`
	AISummary             string     `json:"aiSummary,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// ExtractedDataResponse is the API shape of an extraction result.
type ExtractedDataResponse struct {
	FullName             string               `json:"fullName"`
	Email                string               `json:"email,omitempty"`
	Phone                string               `json:"phone,omitempty"`
	Location             string               `json:"location,omitempty"`
	City                 string               `json:"city,omitempty"`
	Country              string               `json:"country,omitempty"`
	Age                  int                  `json:"age,omitempty"`
	Gender               string               `json:"gender,omitempty"`
	LinkedInURL          string               `json:"linkedinUrl,omitempty"`
	Education            []EducationEntry     `json:"education"`
	Experience           []ExperienceEntry    `json:"experience"`
	Certifications       []CertificationEntry `json:"certifications"`
	Internships          []ExperienceEntry    `json:"internships"`
	TechnicalSkills      []string             `json:"technicalSkills"`
	SoftSkills           []string             `json:"softSkills"`
	Tools                []string             `json:"tools"`
	Languages            []string             `json:"languages"`
	Keywords             []string             `json:"keywords"`
	TotalExperienceYears float64              `json:"totalExperienceYears"`
	SeniorityLevel       string               `json:"seniorityLevel,omitempty"`
	Industry             string               `json:"industry,omitempty"`
	HasPhoto             bool                 `json:"hasPhoto"`
}

// ToResponse converts a CV to its API shape.
func (cv CV) ToResponse() CVResponse {
	return CVResponse{
		ID:                    cv.ID,
		UserID:                cv.UserID,
		OriginalFileName:      cv.OriginalFileName,
		DocumentType:          string(cv.DocumentType),
		FileSize:              cv.FileSize,
		Checksum:              cv.Checksum,
		PhotoURL:              cv.PhotoURL,
		Status:                cv.Status,
		ProcessingStartedAt:   cv.ProcessingStartedAt,
		ProcessingCompletedAt: cv.ProcessingCompletedAt,
		ProcessingError:       cv.ProcessingError,
		LLMProvider:           cv.LLMProvider,
		LLMModel:              cv.LLMModel,
		ExtractionVersion:     cv.ExtractionVersion,
		ConfidenceScore:       cv.ConfidenceScore,
		AISummary:             cv.AISummary,
		CreatedAt:             cv.CreatedAt,
	}
}

// ToResponse converts extracted data to its API shape.
func (d ExtractedData) ToResponse() ExtractedDataResponse {
	return ExtractedDataResponse{
		FullName:             d.FullName,
		Email:                d.Email,
		Phone:                d.Phone,
		Location:             d.Location,
		City:                 d.City,
		Country:              d.Country,
		Age:                  d.Age,
		Gender:               d.Gender,
		LinkedInURL:          d.LinkedInURL,
		Education:            d.Education,
		Experience:           d.Experience,
		Certifications:       d.Certifications,
		Internships:          d.Internships,
		TechnicalSkills:      d.TechnicalSkills,
		SoftSkills:           d.SoftSkills,
		Tools:                d.Tools,
		Languages:            d.Languages,
		Keywords:             d.Keywords,
		TotalExperienceYears: d.TotalExperienceYears,
		SeniorityLevel:       d.SeniorityLevel,
		Industry:             d.Industry,
		HasPhoto:             d.HasPhoto,
	}
}
