package http

import (
	"github.com/maxschool-bot/internal/infrastructure/dynamo"
	jwtinfra "github.com/maxschool-bot/internal/infrastructure/jwt"
	"github.com/maxschool-bot/internal/infrastructure/maxapi"
	"github.com/maxschool-bot/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	RecordRepo   *dynamo.DirectoryRepo
	GuardianRepo *dynamo.GuardianRepo
	MentorRepo   *dynamo.MentorRepo
	CodeSender   smtp.CodeSender
	Replier      maxapi.Replier
	JWTProvider  *jwtinfra.Provider
}
