// Package uploader talks to the app's media upload API. The publish
// orchestrator hands it processed files one at a time and receives the
// remote URL each one lives at afterwards.
package uploader
