// Package publish runs the sequential publish pipeline: local
// validation, eligibility gating, media URI checks, one-at-a-time
// uploads with progress, and the final post create/update call. Every
// failure path leaves the draft intact so the user can retry without
// re-selecting media.
package publish
