package member

import (
	"studio-api/core/database"
	"studio-api/modules/member/repository"
	"studio-api/modules/member/service"
)

// Init wires the member lookup boundary. It exposes no routes of its own;
// profile management belongs to another service.
func Init(db database.Database, useCache bool) service.MemberServiceInterface {
	repo := repository.NewMemberRepository(db)
	return service.NewMemberService(repo, useCache)
}
