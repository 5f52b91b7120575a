// Package eligibility implements the posting-eligibility collaborator
// client: identity verification and membership gating.
package eligibility
