// Package posts implements the post create/update collaborator client.
package posts
