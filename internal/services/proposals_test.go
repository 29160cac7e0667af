package services

import (
	"testing"

	"panveliq/internal/models"
	"panveliq/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	sent []*utils.EmailMessage
}

func (s *captureSender) Send(msg *utils.EmailMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

func TestNormalizeProposalPayloadLowercaseKeys(t *testing.T) {
	raw := []byte(`{
		"strategy": ["audit", "position"],
		"differentiators": ["fast"],
		"timeline": [{"phase": "Discovery", "duration": "2 weeks", "description": "research"}],
		"campaigns": [{"name": "Welcome", "channel": "email", "description": "onboarding"}],
		"budget": "$5k/mo"
	}`)

	sections, err := NormalizeProposalPayload(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"audit", "position"}, sections.Strategy)
	assert.Equal(t, "Welcome", sections.Campaigns[0].Name)
	assert.Equal(t, "$5k/mo", sections.Budget)
}

func TestNormalizeProposalPayloadCapitalizedKeys(t *testing.T) {
	raw := []byte(`{
		"Strategy": ["audit"],
		"Recommended_Campaigns": [{"name": "Push", "channel": "whatsapp", "description": "re-engage"}],
		"Budget": "$10k"
	}`)

	sections, err := NormalizeProposalPayload(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"audit"}, sections.Strategy)
	require.Len(t, sections.Campaigns, 1)
	assert.Equal(t, "Push", sections.Campaigns[0].Name)
	assert.Equal(t, "$10k", sections.Budget)
}

func TestNormalizeProposalPayloadMixedCasingSameResult(t *testing.T) {
	lower := []byte(`{"campaigns": [{"name": "A", "channel": "email", "description": "d"}], "budget": "$1"}`)
	upper := []byte(`{"Recommended_Campaigns": [{"name": "A", "channel": "email", "description": "d"}], "Budget": "$1"}`)

	a, err := NormalizeProposalPayload(lower)
	require.NoError(t, err)
	b, err := NormalizeProposalPayload(upper)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestNormalizeProposalPayloadDropsUnknownKeys(t *testing.T) {
	sections, err := NormalizeProposalPayload([]byte(`{"surprise": true, "budget": "$2"}`))
	require.NoError(t, err)
	assert.Equal(t, "$2", sections.Budget)
	assert.Empty(t, sections.Strategy)
}

func TestNormalizeProposalPayloadRejectsGarbage(t *testing.T) {
	_, err := NormalizeProposalPayload([]byte(`not json`))
	assert.Error(t, err)

	_, err = NormalizeProposalPayload([]byte(`{"strategy": "not an array"}`))
	assert.Error(t, err)
}

func TestApplySectionsRoundTrip(t *testing.T) {
	sections := &ProposalSections{
		Strategy: []string{"audit"},
		Timeline: []TimelinePhase{{Phase: "Launch", Duration: "4 weeks", Description: "go live"}},
		Budget:   "$3k",
	}

	var proposal models.ProjectProposal
	require.NoError(t, ApplySections(&proposal, sections))

	assert.JSONEq(t, `["audit"]`, string(proposal.Strategy))
	assert.Equal(t, "$3k", proposal.Budget)

	html, err := RenderProposalHTML(&proposal)
	require.NoError(t, err)
	assert.Contains(t, html, "Launch")
	assert.Contains(t, html, "$3k")
}

func TestRenderProposalHTMLCustomOverride(t *testing.T) {
	proposal := models.ProjectProposal{
		ProspectName: "Acme",
		CustomHTML:   "<p>hand edited</p>",
	}

	html, err := RenderProposalHTML(&proposal)
	require.NoError(t, err)
	assert.Equal(t, "<p>hand edited</p>", html)
}

func TestRenderProposalHTMLEscapesProspect(t *testing.T) {
	proposal := models.ProjectProposal{ProspectName: "<script>alert(1)</script>"}

	html, err := RenderProposalHTML(&proposal)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestValidateWizardStep(t *testing.T) {
	input := &WizardInput{}

	assert.ErrorIs(t, ValidateWizardStep(WizardStepProspect, input), ErrWizardIncomplete)

	input.ProspectName = "Acme"
	assert.NoError(t, ValidateWizardStep(WizardStepProspect, input))

	assert.ErrorIs(t, ValidateWizardStep(WizardStepGoals, input), ErrWizardIncomplete)
	input.Goals = "Grow audience"
	assert.NoError(t, ValidateWizardStep(WizardStepGoals, input))

	assert.NoError(t, ValidateWizardStep(WizardStepReview, input))
}

func TestAdvanceWizardForwardGated(t *testing.T) {
	input := &WizardInput{}

	step, err := AdvanceWizard(WizardStepProspect, WizardStepGoals, input)
	assert.ErrorIs(t, err, ErrWizardIncomplete)
	assert.Equal(t, WizardStepProspect, step)

	input.ProspectName = "Acme"
	step, err = AdvanceWizard(WizardStepProspect, WizardStepGoals, input)
	assert.NoError(t, err)
	assert.Equal(t, WizardStepGoals, step)
}

func TestAdvanceWizardSkipValidatesEveryStep(t *testing.T) {
	input := &WizardInput{ProspectName: "Acme"}

	_, err := AdvanceWizard(WizardStepProspect, WizardStepReview, input)
	assert.ErrorIs(t, err, ErrWizardIncomplete)

	input.Goals = "Grow"
	step, err := AdvanceWizard(WizardStepProspect, WizardStepReview, input)
	assert.NoError(t, err)
	assert.Equal(t, WizardStepReview, step)
}

func TestAdvanceWizardBackwardAlwaysAllowed(t *testing.T) {
	step, err := AdvanceWizard(WizardStepReview, WizardStepProspect, &WizardInput{})
	assert.NoError(t, err)
	assert.Equal(t, WizardStepProspect, step)
}

func TestAdvanceWizardRejectsOutOfRange(t *testing.T) {
	_, err := AdvanceWizard(WizardStepProspect, 4, &WizardInput{})
	assert.Error(t, err)
	_, err = AdvanceWizard(WizardStepProspect, 0, &WizardInput{})
	assert.Error(t, err)
}

func TestSendProposalEmail(t *testing.T) {
	sender := &captureSender{}
	proposal := &models.ProjectProposal{
		ProspectName:  "Ana Prospect",
		ProspectEmail: "ana@example.com",
		Company:       "Acme Corp",
		Goals:         "Grow retention",
	}

	err := SendProposalEmail(sender, proposal)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Acme Corp")
	assert.True(t, msg.HTML)
	assert.Contains(t, msg.Body, "Ana Prospect")
	assert.Contains(t, msg.Body, "Grow retention")
}

func TestSendProposalEmailCustomHTMLWins(t *testing.T) {
	sender := &captureSender{}
	proposal := &models.ProjectProposal{
		ProspectName:  "Ana Prospect",
		ProspectEmail: "ana@example.com",
		CustomHTML:    "<p>hand edited</p>",
	}

	require.NoError(t, SendProposalEmail(sender, proposal))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "<p>hand edited</p>", sender.sent[0].Body)
}

func TestSendProposalEmailRequiresProspectEmail(t *testing.T) {
	sender := &captureSender{}
	err := SendProposalEmail(sender, &models.ProjectProposal{ProspectName: "Ana"})

	assert.ErrorIs(t, err, ErrNoProspectEmail)
	assert.Empty(t, sender.sent)
}

func TestGenerateSections(t *testing.T) {
	input := &WizardInput{
		ProspectName: "Acme",
		Company:      "Acme Corp",
		Industry:     "retail",
		Budget:       "$8k",
	}

	sections := GenerateSections(input)
	assert.NotEmpty(t, sections.Strategy)
	assert.NotEmpty(t, sections.Differentiators)
	assert.NotEmpty(t, sections.Timeline)
	assert.NotEmpty(t, sections.Campaigns)
	assert.Equal(t, "$8k", sections.Budget)
}
