package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/formflow/formflow-api/internal/models"
)

// DocumentSpec is the semantic document handed unchanged to the PDF
// collaborator. The builders below produce it; they never touch PDF bytes.
type DocumentSpec struct {
	Title    string
	Filename string
	HTML     string
}

// PageConfig is the fixed page setup for every generated artifact.
type PageConfig struct {
	Size         string
	MarginTopMM  uint
	MarginRight  uint
	MarginBottom uint
	MarginLeft   uint
}

// DefaultPageConfig is A4 with 20mm margins on all sides.
func DefaultPageConfig() PageConfig {
	return PageConfig{Size: "A4", MarginTopMM: 20, MarginRight: 20, MarginBottom: 20, MarginLeft: 20}
}

const timeLayout = "2006-01-02 15:04:05"

const draftStyle = `
    body { font-family: 'Times New Roman', serif; font-size: 12px; line-height: 1.6; margin: 40px; color: #000; }
    .title { font-size: 18px; font-weight: bold; text-align: center; margin-bottom: 30px; }
    .content { text-align: justify; margin-bottom: 30px; }
    .footer { font-size: 10px; margin-top: 40px; border-top: 1px solid #ccc; padding-top: 10px; }
    p { margin-bottom: 12px; }`

const approvedStyle = `
    body { font-family: 'Times New Roman', serif; font-size: 12px; line-height: 1.6; margin: 40px; color: #000; }
    .header { text-align: center; margin-bottom: 30px; }
    .badge { font-size: 20px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
    .separator { border-bottom: 1px solid #e5e7eb; margin: 20px 0; }
    .format-title { font-size: 18px; font-weight: bold; text-align: center; margin: 20px 0; }
    .validation-box { background-color: #f8fafc; border: 1px solid #e2e8f0; padding: 20px; margin: 20px 0; }
    .approved { color: #059669; font-weight: bold; font-size: 14px; margin-bottom: 10px; }
    .validation-info { color: #374151; font-size: 11px; line-height: 1.4; }
    .content { text-align: justify; margin: 30px 0; }
    .observations { margin-top: 40px; }
    .observations-title { font-size: 14px; font-weight: bold; text-decoration: underline; margin-bottom: 10px; }
    .observations-text { font-size: 11px; color: #374151; text-align: justify; }
    .footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #e5e7eb; font-size: 9px; color: #6b7280; }`

// BuildDraft produces the plain document used for pending and rejected
// submissions: centered title, justified substituted body, and a footer with
// the submitter and creation timestamp.
func BuildDraft(format models.Format, submission models.Submission) DocumentSpec {
	body := Substitute(format.BodyTemplate, submission.Data)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n<style>")
	b.WriteString(draftStyle)
	b.WriteString("\n</style>\n</head>\n<body>\n")
	fmt.Fprintf(&b, "  <div class=\"title\">%s</div>\n", format.Title)
	fmt.Fprintf(&b, "  <div class=\"content\">%s</div>\n", body)
	b.WriteString("  <div class=\"footer\">\n")
	fmt.Fprintf(&b, "    <p>Generated by: User %d</p>\n", submission.SubmitterID)
	fmt.Fprintf(&b, "    <p>Date: %s</p>\n", submission.CreatedAt.Format(timeLayout))
	b.WriteString("  </div>\n</body>\n</html>\n")

	return DocumentSpec{
		Title:    format.Title,
		Filename: fmt.Sprintf("format_%d.pdf", submission.ID),
		HTML:     b.String(),
	}
}

// BuildApproved produces the annotated document for an approved submission:
// an APPROVED badge, the validator identity block, the substituted body, an
// Observations section only when present, and a footer with the submission
// id and uppercased status.
func BuildApproved(format models.Format, submission models.Submission, validation models.Validation, submitter, validator models.User) DocumentSpec {
	body := Substitute(format.BodyTemplate, submission.Data)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n<style>")
	b.WriteString(approvedStyle)
	b.WriteString("\n</style>\n</head>\n<body>\n")
	b.WriteString("  <div class=\"header\">\n    <div class=\"badge\">APPROVED</div>\n    <div class=\"separator\"></div>\n  </div>\n")
	fmt.Fprintf(&b, "  <div class=\"format-title\">%s</div>\n", format.Title)
	b.WriteString("  <div class=\"validation-box\">\n")
	b.WriteString("    <div class=\"approved\">&#10003; DOCUMENT APPROVED</div>\n")
	b.WriteString("    <div class=\"validation-info\">\n")
	fmt.Fprintf(&b, "      <div>Validated by: %s</div>\n", validator.DisplayName)
	fmt.Fprintf(&b, "      <div>Validation date: %s</div>\n", validation.UpdatedAt.Format(timeLayout))
	fmt.Fprintf(&b, "      <div>Requested by: %s</div>\n", submitter.DisplayName)
	b.WriteString("    </div>\n  </div>\n")
	fmt.Fprintf(&b, "  <div class=\"content\">%s</div>\n", body)
	if obs := strings.TrimSpace(validation.Observations); obs != "" {
		b.WriteString("  <div class=\"observations\">\n")
		b.WriteString("    <div class=\"observations-title\">Validator Observations:</div>\n")
		fmt.Fprintf(&b, "    <div class=\"observations-text\">%s</div>\n", obs)
		b.WriteString("  </div>\n")
	}
	b.WriteString("  <div class=\"footer\">\n")
	fmt.Fprintf(&b, "    <div>Document generated: %s</div>\n", time.Now().Format(timeLayout))
	fmt.Fprintf(&b, "    <div>Submission ID: %d</div>\n", submission.ID)
	fmt.Fprintf(&b, "    <div>Status: %s</div>\n", strings.ToUpper(string(submission.Status)))
	b.WriteString("  </div>\n</body>\n</html>\n")

	return DocumentSpec{
		Title:    format.Title,
		Filename: fmt.Sprintf("validated_document_%d.pdf", submission.ID),
		HTML:     b.String(),
	}
}
