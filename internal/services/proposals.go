package services

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"panveliq/internal/models"
	"panveliq/internal/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Wizard step boundaries. Step 1 is prospect details, step 2 is goals and
// budget, step 3 is review.
const (
	WizardStepProspect = 1
	WizardStepGoals    = 2
	WizardStepReview   = 3
)

const ShareLinkTTL = 7 * 24 * time.Hour

var (
	ErrWizardIncomplete = errors.New("current step has missing required fields")
	ErrShareLinkExpired = errors.New("share link has expired")
	ErrNoProspectEmail  = errors.New("proposal has no prospect email")
)

// EmailSender is the outbound mail dependency of the proposal mailer.
type EmailSender interface {
	Send(msg *utils.EmailMessage) error
}

// SendProposalEmail renders the proposal body and delivers it to the
// prospect.
func SendProposalEmail(sender EmailSender, p *models.ProjectProposal) error {
	if strings.TrimSpace(p.ProspectEmail) == "" {
		return ErrNoProspectEmail
	}

	html, err := RenderProposalHTML(p)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Marketing proposal for %s", orCompany(&WizardInput{
		ProspectName: p.ProspectName,
		Company:      p.Company,
	}))
	return sender.Send(&utils.EmailMessage{
		To:      p.ProspectEmail,
		Subject: subject,
		Body:    html,
		HTML:    true,
	})
}

// ProposalSections is the canonical shape of a generated proposal body.
// Upstream generators are inconsistent about key casing, so everything is
// normalized into this struct at the intake boundary and only these keys
// are ever persisted.
type ProposalSections struct {
	Strategy        []string           `json:"strategy"`
	Differentiators []string           `json:"differentiators"`
	Timeline        []TimelinePhase    `json:"timeline"`
	Campaigns       []ProposedCampaign `json:"campaigns"`
	Budget          string             `json:"budget"`
}

type TimelinePhase struct {
	Phase       string `json:"phase"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type ProposedCampaign struct {
	Name        string `json:"name"`
	Channel     string `json:"channel"`
	Description string `json:"description"`
}

// sectionAliases maps every key spelling seen in generator output to its
// canonical section name.
var sectionAliases = map[string]string{
	"strategy":              "strategy",
	"Strategy":              "strategy",
	"differentiators":       "differentiators",
	"Differentiators":       "differentiators",
	"timeline":              "timeline",
	"Timeline":              "timeline",
	"campaigns":             "campaigns",
	"Campaigns":             "campaigns",
	"recommended_campaigns": "campaigns",
	"Recommended_Campaigns": "campaigns",
	"budget":                "budget",
	"Budget":                "budget",
}

// NormalizeProposalPayload folds a raw generated payload, whatever its key
// casing, into canonical sections. Unknown keys are dropped.
func NormalizeProposalPayload(raw []byte) (*ProposalSections, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid proposal payload: %w", err)
	}

	sections := &ProposalSections{}
	for key, value := range payload {
		canonical, ok := sectionAliases[key]
		if !ok {
			continue
		}
		switch canonical {
		case "strategy":
			if err := json.Unmarshal(value, &sections.Strategy); err != nil {
				return nil, fmt.Errorf("invalid strategy section: %w", err)
			}
		case "differentiators":
			if err := json.Unmarshal(value, &sections.Differentiators); err != nil {
				return nil, fmt.Errorf("invalid differentiators section: %w", err)
			}
		case "timeline":
			if err := json.Unmarshal(value, &sections.Timeline); err != nil {
				return nil, fmt.Errorf("invalid timeline section: %w", err)
			}
		case "campaigns":
			if err := json.Unmarshal(value, &sections.Campaigns); err != nil {
				return nil, fmt.Errorf("invalid campaigns section: %w", err)
			}
		case "budget":
			if err := json.Unmarshal(value, &sections.Budget); err != nil {
				return nil, fmt.Errorf("invalid budget section: %w", err)
			}
		}
	}
	return sections, nil
}

// ApplySections writes normalized sections onto a proposal record.
func ApplySections(p *models.ProjectProposal, sections *ProposalSections) error {
	marshal := func(v interface{}) (datatypes.JSON, error) {
		if v == nil {
			return nil, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return datatypes.JSON(b), nil
	}

	var err error
	if p.Strategy, err = marshal(sections.Strategy); err != nil {
		return err
	}
	if p.Differentiators, err = marshal(sections.Differentiators); err != nil {
		return err
	}
	if p.Timeline, err = marshal(sections.Timeline); err != nil {
		return err
	}
	if p.Campaigns, err = marshal(sections.Campaigns); err != nil {
		return err
	}
	if sections.Budget != "" {
		p.Budget = sections.Budget
	}
	return nil
}

// WizardInput is the accumulating state of the three-step proposal wizard.
type WizardInput struct {
	ProspectName  string `json:"prospectName"`
	ProspectEmail string `json:"prospectEmail"`
	Company       string `json:"company"`
	Industry      string `json:"industry"`
	Goals         string `json:"goals"`
	Budget        string `json:"budget"`
}

// ValidateWizardStep checks whether a step's required fields are filled.
// Step 3 revalidates everything since it is the submission gate.
func ValidateWizardStep(step int, input *WizardInput) error {
	switch step {
	case WizardStepProspect:
		if strings.TrimSpace(input.ProspectName) == "" {
			return fmt.Errorf("%w: prospect name", ErrWizardIncomplete)
		}
	case WizardStepGoals:
		if strings.TrimSpace(input.Goals) == "" {
			return fmt.Errorf("%w: goals", ErrWizardIncomplete)
		}
	case WizardStepReview:
		if err := ValidateWizardStep(WizardStepProspect, input); err != nil {
			return err
		}
		if err := ValidateWizardStep(WizardStepGoals, input); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid wizard step %d", step)
	}
	return nil
}

// AdvanceWizard moves forward only when the current step validates. Moving
// backward is always allowed and never validates.
func AdvanceWizard(current, target int, input *WizardInput) (int, error) {
	if target < WizardStepProspect || target > WizardStepReview {
		return current, fmt.Errorf("invalid wizard step %d", target)
	}
	if target <= current {
		return target, nil
	}
	for step := current; step < target; step++ {
		if err := ValidateWizardStep(step, input); err != nil {
			return current, err
		}
	}
	return target, nil
}

var proposalTemplate = template.Must(template.New("proposal").Parse(`<div class="proposal">
  <h1>Marketing Proposal for {{.ProspectName}}</h1>
  {{if .Company}}<p class="company">{{.Company}}{{if .Industry}} &middot; {{.Industry}}{{end}}</p>{{end}}
  {{if .Goals}}<section><h2>Goals</h2><p>{{.Goals}}</p></section>{{end}}
  {{if .Strategy}}<section><h2>Strategy</h2><ul>{{range .Strategy}}<li>{{.}}</li>{{end}}</ul></section>{{end}}
  {{if .Differentiators}}<section><h2>Why Us</h2><ul>{{range .Differentiators}}<li>{{.}}</li>{{end}}</ul></section>{{end}}
  {{if .Timeline}}<section><h2>Timeline</h2><ol>{{range .Timeline}}<li><strong>{{.Phase}}</strong> ({{.Duration}}): {{.Description}}</li>{{end}}</ol></section>{{end}}
  {{if .Campaigns}}<section><h2>Recommended Campaigns</h2><ul>{{range .Campaigns}}<li><strong>{{.Name}}</strong> [{{.Channel}}]: {{.Description}}</li>{{end}}</ul></section>{{end}}
  {{if .Budget}}<section><h2>Investment</h2><p>{{.Budget}}</p></section>{{end}}
</div>
`))

type proposalView struct {
	ProspectName    string
	Company         string
	Industry        string
	Goals           string
	Budget          string
	Strategy        []string
	Differentiators []string
	Timeline        []TimelinePhase
	Campaigns       []ProposedCampaign
}

// RenderProposalHTML produces the proposal body from its stored sections.
// A non-empty CustomHTML always wins over the generated rendering.
func RenderProposalHTML(p *models.ProjectProposal) (string, error) {
	if strings.TrimSpace(p.CustomHTML) != "" {
		return p.CustomHTML, nil
	}

	view := proposalView{
		ProspectName: p.ProspectName,
		Company:      p.Company,
		Industry:     p.Industry,
		Goals:        p.Goals,
		Budget:       p.Budget,
	}
	unmarshal := func(raw datatypes.JSON, dst interface{}) error {
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, dst)
	}
	if err := unmarshal(p.Strategy, &view.Strategy); err != nil {
		return "", err
	}
	if err := unmarshal(p.Differentiators, &view.Differentiators); err != nil {
		return "", err
	}
	if err := unmarshal(p.Timeline, &view.Timeline); err != nil {
		return "", err
	}
	if err := unmarshal(p.Campaigns, &view.Campaigns); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := proposalTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render proposal: %w", err)
	}
	return buf.String(), nil
}

// ProposalService owns proposal persistence concerns beyond generic CRUD.
type ProposalService struct {
	db *gorm.DB
}

func NewProposalService(db *gorm.DB) *ProposalService {
	return &ProposalService{db: db}
}

// SaveContent persists an autosave of the editable proposal body.
func (s *ProposalService) SaveContent(proposalID, contentHTML string) error {
	result := s.db.Model(&models.ProjectProposal{}).
		Where("id = ? AND is_deleted = ?", proposalID, false).
		Update("content_html", contentHTML)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateShareLink mints a public share token for a proposal.
func (s *ProposalService) CreateShareLink(proposalID string) (*models.ProposalShareLink, error) {
	var proposal models.ProjectProposal
	if err := s.db.First(&proposal, "id = ? AND is_deleted = ?", proposalID, false).Error; err != nil {
		return nil, err
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, err
	}

	link := &models.ProposalShareLink{
		ProposalID: proposalID,
		Token:      token,
		ExpiresAt:  time.Now().Add(ShareLinkTTL),
	}
	if err := s.db.Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// ResolveShareLink looks up a live link by token, bumps its view counter
// and returns the proposal it points at.
func (s *ProposalService) ResolveShareLink(token string) (*models.ProjectProposal, error) {
	var link models.ProposalShareLink
	if err := s.db.First(&link, "token = ? AND is_deleted = ?", token, false).Error; err != nil {
		return nil, err
	}
	if time.Now().After(link.ExpiresAt) {
		return nil, ErrShareLinkExpired
	}

	if err := s.db.Model(&link).Update("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return nil, err
	}

	var proposal models.ProjectProposal
	if err := s.db.First(&proposal, "id = ? AND is_deleted = ?", link.ProposalID, false).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// ExpireStaleLinks soft-deletes links past their expiry. Returns the number
// of links expired.
func (s *ProposalService) ExpireStaleLinks() (int64, error) {
	result := s.db.Model(&models.ProposalShareLink{}).
		Where("expires_at < ? AND is_deleted = ?", time.Now(), false).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": time.Now()})
	return result.RowsAffected, result.Error
}

func generateShareToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateSections builds a draft proposal body from the wizard's intake.
// Output mirrors the upstream generator shape, already canonical.
func GenerateSections(input *WizardInput) *ProposalSections {
	industry := input.Industry
	if industry == "" {
		industry = "your industry"
	}
	return &ProposalSections{
		Strategy: []string{
			fmt.Sprintf("Audit current marketing presence for %s", input.ProspectName),
			fmt.Sprintf("Position %s against the leading voices in %s", orCompany(input), industry),
			"Build an always-on content calendar across owned channels",
		},
		Differentiators: []string{
			"Dedicated account strategist",
			"Weekly performance reporting",
			"Channel-native creative production",
		},
		Timeline: []TimelinePhase{
			{Phase: "Discovery", Duration: "2 weeks", Description: "Stakeholder interviews and audience research"},
			{Phase: "Launch", Duration: "4 weeks", Description: "First campaigns live across selected channels"},
			{Phase: "Optimize", Duration: "ongoing", Description: "Iterate on creative and targeting from live data"},
		},
		Campaigns: []ProposedCampaign{
			{Name: "Welcome Series", Channel: "email", Description: "Automated onboarding sequence for new signups"},
			{Name: "Re-engagement Push", Channel: "whatsapp", Description: "Win back contacts inactive for 30+ days"},
		},
		Budget: input.Budget,
	}
}

func orCompany(input *WizardInput) string {
	if input.Company != "" {
		return input.Company
	}
	return input.ProspectName
}
