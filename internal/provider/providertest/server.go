// Package providertest runs an in-memory identity provider that speaks the
// subset of the Better Auth REST API the repositories use. It records every
// request so tests can assert what was forwarded.
package providertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/guardian/internal/model/admin"
	"github.com/deppfellow/guardian/internal/model/auth"
	"github.com/deppfellow/guardian/internal/model/billing"
	"github.com/deppfellow/guardian/internal/model/invitation"
	"github.com/deppfellow/guardian/internal/model/member"
	"github.com/deppfellow/guardian/internal/model/organization"
	"github.com/deppfellow/guardian/internal/model/team"
	"github.com/deppfellow/guardian/internal/validation"
)

// SessionCookie is the cookie the fake issues and reads.
const SessionCookie = "better-auth.session_token"

// Request is one call the fake received.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

type user struct {
	auth.User
	password string
}

type session struct {
	auth.Session
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	seq         int
	requests    []Request
	failures    map[string]int
	users       map[string]*user
	sessions    map[string]*session
	orgs        map[string]*organization.Organization
	members     []member.Member
	invitations map[string]*invitation.Invitation
	teams       []team.Team
	teamMembers []team.Member
}

// New starts a fake provider that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		failures:    map[string]int{},
		users:       map[string]*user{},
		sessions:    map[string]*session{},
		orgs:        map[string]*organization.Organization{},
		invitations: map[string]*invitation.Invitation{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count reports how many requests hit path.
func (s *Server) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the latest request to path.
func (s *Server) Last(path string) (Request, bool) {
	requests := s.Requests()
	for i := len(requests) - 1; i >= 0; i-- {
		if requests[i].Path == path {
			return requests[i], true
		}
	}
	return Request{}, false
}

// Fail makes every following call to path answer status.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// CreateUser registers a user with a live session and returns the user id
// and the session token.
func (s *Server) CreateUser(email, password, name string) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUser(email, password, name)
	return u.ID, s.addSession(u).Token
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_%d", prefix, s.seq)
}

func (s *Server) addUser(email, password, name string) *user {
	now := time.Now().UTC()
	u := &user{
		User: auth.User{
			ID:        s.nextID("user"),
			Email:     email,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		},
		password: password,
	}
	s.users[u.ID] = u
	return u
}

func (s *Server) addSession(u *user) *session {
	now := time.Now().UTC()
	sess := &session{Session: auth.Session{
		ID:        s.nextID("session"),
		UserID:    u.ID,
		Token:     s.nextID("token"),
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	s.sessions[sess.Token] = sess
	return sess
}

type route func(w http.ResponseWriter, r *http.Request, body map[string]any, sess *session)

func (s *Server) routes() map[string]route {
	return map[string]route{
		"GET /ok":                                 s.ok,
		"POST /sign-up/email":                     s.signUp,
		"POST /sign-in/email":                     s.signIn,
		"GET /get-session":                        s.getSession,
		"POST /sign-out":                          authed(s.signOut),
		"POST /organization/create":               authed(s.createOrganization),
		"GET /organization/list":                  authed(s.listOrganizations),
		"GET /organization/get-full-organization": authed(s.getFullOrganization),
		"POST /organization/set-active":           authed(s.setActiveOrganization),
		"POST /organization/update":               authed(s.updateOrganization),
		"POST /organization/check-slug":           authed(s.checkSlug),
		"POST /organization/add-member":           authed(s.addMember),
		"GET /organization/list-members":          authed(s.listMembers),
		"POST /organization/remove-member":        authed(s.removeMember),
		"POST /organization/invite-member":        authed(s.inviteMember),
		"POST /organization/accept-invitation":    authed(s.acceptInvitation),
		"GET /organization/get-invitation":        authed(s.getInvitation),
		"POST /organization/cancel-invitation":    authed(s.cancelInvitation),
		"POST /organization/reject-invitation":    authed(s.rejectInvitation),
		"POST /organization/create-team":          authed(s.createTeam),
		"GET /organization/list-teams":            authed(s.listTeams),
		"POST /organization/remove-team":          authed(s.removeTeam),
		"POST /organization/update-team":          authed(s.updateTeam),
		"POST /organization/set-active-team":      authed(s.setActiveTeam),
		"POST /organization/add-team-member":      authed(s.addTeamMember),
		"POST /organization/remove-team-member":   authed(s.removeTeamMember),
		"POST /admin/ban-user":                    authed(s.banUser),
		"POST /admin/impersonate-user":            authed(s.impersonateUser),
		"POST /admin/stop-impersonating":          authed(s.stopImpersonating),
		"POST /subscription/upgrade":              authed(s.upgradeSubscription),
		"POST /subscription/cancel":               authed(s.cancelSubscription),
		"POST /subscription/restore":              authed(s.restoreSubscription),
		"POST /subscription/billing-portal":       authed(s.billingPortal),
	}
}

func authed(next route) route {
	return func(w http.ResponseWriter, r *http.Request, body map[string]any, sess *session) {
		if sess == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		next(w, r, body, sess)
	}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	body := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})

	if status, ok := s.failures[r.URL.Path]; ok {
		writeError(w, status, "FORCED_FAILURE", http.StatusText(status))
		return
	}

	handle, ok := s.routes()[r.Method+" "+r.URL.Path]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}

	handle(w, r, body, s.sessionFor(r))
}

func (s *Server) sessionFor(r *http.Request) *session {
	token := ""
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		token = cookie.Value
	}
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		token = bearer
	}
	return s.sessions[token]
}

func (s *Server) ok(w http.ResponseWriter, _ *http.Request, _ map[string]any, _ *session) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) signUp(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	email, password, name := str(body, "email"), str(body, "password"), str(body, "name")
	for _, u := range s.users {
		if u.Email == email {
			writeError(w, http.StatusUnprocessableEntity, "USER_ALREADY_EXISTS", "User already exists")
			return
		}
	}

	u := s.addUser(email, password, name)
	sess := s.addSession(u)
	setSessionCookie(w, sess.Token)
	writeJSON(w, http.StatusOK, auth.Result{Token: &sess.Token, User: &u.User})
}

func (s *Server) signIn(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	email, password := str(body, "email"), str(body, "password")
	for _, u := range s.users {
		if u.Email == email && u.password == password {
			sess := s.addSession(u)
			setSessionCookie(w, sess.Token)
			writeJSON(w, http.StatusOK, auth.Result{Token: &sess.Token, User: &u.User})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "INVALID_EMAIL_OR_PASSWORD", "Invalid email or password")
}

func (s *Server) getSession(w http.ResponseWriter, _ *http.Request, _ map[string]any, sess *session) {
	if sess == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, auth.CurrentSession{Session: sess.Session, User: s.users[sess.UserID].User})
}

func (s *Server) signOut(w http.ResponseWriter, _ *http.Request, _ map[string]any, sess *session) {
	delete(s.sessions, sess.Token)
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, auth.SignOutResult{Success: true})
}

func (s *Server) createOrganization(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	var req organization.CreateRequest
	decode(body, &req)

	for _, org := range s.orgs {
		if org.Slug != nil && req.Slug != nil && *org.Slug == *req.Slug {
			writeError(w, http.StatusBadRequest, "ORGANIZATION_ALREADY_EXISTS", "Organization already exists")
			return
		}
	}

	org := &organization.Organization{
		ID:        s.nextID("org"),
		Name:      req.Name,
		Slug:      req.Slug,
		Logo:      req.Logo,
		Metadata:  req.Metadata,
		CreatedAt: time.Now().UTC(),
		Settings:  req.Settings,
	}
	if req.Plan != nil {
		org.Plan = *req.Plan
	}
	if req.SeatLimit != nil {
		org.SeatLimit = *req.SeatLimit
	}
	if req.GroupLimit != nil {
		org.GroupLimit = *req.GroupLimit
	}
	s.orgs[org.ID] = org

	s.members = append(s.members, member.Member{
		ID:             s.nextID("member"),
		OrganizationID: org.ID,
		UserID:         sess.UserID,
		Role:           validation.RoleList{"owner"},
		CreatedAt:      time.Now().UTC(),
	})
	sess.ActiveOrganizationID = &org.ID

	writeJSON(w, http.StatusOK, org)
}

func (s *Server) isMember(orgID, userID string) bool {
	for _, m := range s.members {
		if m.OrganizationID == orgID && m.UserID == userID {
			return true
		}
	}
	return false
}

func (s *Server) listOrganizations(w http.ResponseWriter, _ *http.Request, _ map[string]any, sess *session) {
	orgs := []organization.Organization{}
	for _, org := range s.orgs {
		if s.isMember(org.ID, sess.UserID) {
			orgs = append(orgs, *org)
		}
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (s *Server) full(orgID string) *organization.Full {
	org, ok := s.orgs[orgID]
	if !ok {
		return nil
	}
	full := &organization.Full{
		Organization: *org,
		Members:      []member.Member{},
		Invitations:  []invitation.Invitation{},
		Teams:        []team.Team{},
	}
	for _, m := range s.members {
		if m.OrganizationID == orgID {
			full.Members = append(full.Members, m)
		}
	}
	for _, inv := range s.invitations {
		if inv.OrganizationID == orgID {
			full.Invitations = append(full.Invitations, *inv)
		}
	}
	for _, t := range s.teams {
		if t.OrganizationID == orgID {
			full.Teams = append(full.Teams, t)
		}
	}
	return full
}

func (s *Server) getFullOrganization(w http.ResponseWriter, _ *http.Request, _ map[string]any, sess *session) {
	if sess.ActiveOrganizationID == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.full(*sess.ActiveOrganizationID))
}

func (s *Server) setActiveOrganization(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	orgID := str(body, "organizationId")
	if _, ok := s.orgs[orgID]; !ok {
		writeError(w, http.StatusBadRequest, "ORGANIZATION_NOT_FOUND", "Organization not found")
		return
	}
	if !s.isMember(orgID, sess.UserID) {
		writeError(w, http.StatusForbidden, "USER_IS_NOT_A_MEMBER_OF_THE_ORGANIZATION", "User is not a member of the organization")
		return
	}
	sess.ActiveOrganizationID = &orgID
	setSessionCookie(w, sess.Token)
	writeJSON(w, http.StatusOK, s.full(orgID))
}

func (s *Server) checkSlug(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	slug := str(body, "slug")
	for _, org := range s.orgs {
		if org.Slug != nil && *org.Slug == slug {
			writeError(w, http.StatusBadRequest, "SLUG_IS_TAKEN", "Slug is taken")
			return
		}
	}
	writeJSON(w, http.StatusOK, organization.SlugAvailability{Status: true})
}

// organizationID resolves an explicit organization id or the active one.
func organizationID(explicit string, sess *session) string {
	if explicit != "" {
		return explicit
	}
	if sess.ActiveOrganizationID != nil {
		return *sess.ActiveOrganizationID
	}
	return ""
}

func (s *Server) addMember(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	var req member.AddRequest
	decode(body, &req)

	orgID := organizationID(deref(req.OrganizationID), sess)
	if _, ok := s.orgs[orgID]; !ok {
		writeError(w, http.StatusBadRequest, "ORGANIZATION_NOT_FOUND", "Organization not found")
		return
	}

	m := member.Member{
		ID:             s.nextID("member"),
		OrganizationID: orgID,
		UserID:         req.UserID,
		Role:           req.Role,
		TeamID:         req.TeamID,
		CreatedAt:      time.Now().UTC(),
	}
	s.members = append(s.members, m)
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request, _ map[string]any, sess *session) {
	orgID := organizationID(r.URL.Query().Get("organizationId"), sess)
	list := member.List{Members: []member.Member{}}
	for _, m := range s.members {
		if m.OrganizationID == orgID {
			list.Members = append(list.Members, m)
		}
	}
	list.Total = len(list.Members)
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) inviteMember(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	var req invitation.SendRequest
	decode(body, &req)

	orgID := organizationID(deref(req.OrganizationID), sess)
	if _, ok := s.orgs[orgID]; !ok {
		writeError(w, http.StatusBadRequest, "ORGANIZATION_NOT_FOUND", "Organization not found")
		return
	}

	inv := &invitation.Invitation{
		ID:             s.nextID("invitation"),
		OrganizationID: orgID,
		Email:          req.Email,
		Role:           req.Role,
		Status:         invitation.StatusPending,
		TeamID:         req.TeamID,
		ExpiresAt:      time.Now().UTC().Add(48 * time.Hour),
		InviterID:      sess.UserID,
	}
	s.invitations[inv.ID] = inv
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) acceptInvitation(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	inv, ok := s.invitations[str(body, "invitationId")]
	if !ok || inv.Status != invitation.StatusPending {
		writeError(w, http.StatusBadRequest, "INVITATION_NOT_FOUND", "Invitation not found")
		return
	}
	if s.users[sess.UserID].Email != inv.Email {
		writeError(w, http.StatusForbidden, "YOU_ARE_NOT_THE_RECIPIENT_OF_THE_INVITATION", "You are not the recipient of the invitation")
		return
	}

	inv.Status = invitation.StatusAccepted
	m := member.Member{
		ID:             s.nextID("member"),
		OrganizationID: inv.OrganizationID,
		UserID:         sess.UserID,
		Role:           inv.Role,
		CreatedAt:      time.Now().UTC(),
	}
	s.members = append(s.members, m)

	writeJSON(w, http.StatusOK, invitation.Acceptance{
		Invitation: *inv,
		Member: &invitation.AcceptedMember{
			ID:             m.ID,
			OrganizationID: m.OrganizationID,
			UserID:         m.UserID,
			Role:           m.Role,
			CreatedAt:      m.CreatedAt,
		},
	})
}

func (s *Server) updateOrganization(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	org, ok := s.orgs[str(body, "organizationId")]
	if !ok {
		writeError(w, http.StatusBadRequest, "ORGANIZATION_NOT_FOUND", "Organization not found")
		return
	}

	data, _ := body["data"].(map[string]any)
	var update organization.UpdateData
	decode(data, &update)

	if update.Name != nil {
		org.Name = *update.Name
	}
	if update.Slug != nil {
		org.Slug = update.Slug
	}
	if update.Plan != nil {
		org.Plan = *update.Plan
	}
	if update.SeatLimit != nil {
		org.SeatLimit = *update.SeatLimit
	}
	if update.Settings != nil {
		org.Settings = update.Settings
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) removeMember(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	target := str(body, "memberIdOrEmail")
	orgID := organizationID(str(body, "organizationId"), sess)

	for i, m := range s.members {
		if m.OrganizationID != orgID {
			continue
		}
		u := s.users[m.UserID]
		if m.ID == target || (u != nil && u.Email == target) {
			s.members = append(s.members[:i], s.members[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"member": m})
			return
		}
	}
	writeError(w, http.StatusBadRequest, "MEMBER_NOT_FOUND", "Member not found")
}

func (s *Server) getInvitation(w http.ResponseWriter, r *http.Request, _ map[string]any, _ *session) {
	inv, ok := s.invitations[r.URL.Query().Get("id")]
	if !ok {
		writeError(w, http.StatusBadRequest, "INVITATION_NOT_FOUND", "Invitation not found")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) cancelInvitation(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	inv, ok := s.invitations[str(body, "invitationId")]
	if !ok {
		writeError(w, http.StatusBadRequest, "INVITATION_NOT_FOUND", "Invitation not found")
		return
	}
	inv.Status = invitation.StatusCanceled
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) rejectInvitation(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	inv, ok := s.invitations[str(body, "invitationId")]
	if !ok || inv.Status != invitation.StatusPending {
		writeError(w, http.StatusBadRequest, "INVITATION_NOT_FOUND", "Invitation not found")
		return
	}
	if s.users[sess.UserID].Email != inv.Email {
		writeError(w, http.StatusForbidden, "YOU_ARE_NOT_THE_RECIPIENT_OF_THE_INVITATION", "You are not the recipient of the invitation")
		return
	}
	inv.Status = invitation.StatusRejected
	writeJSON(w, http.StatusOK, invitation.Rejection{Invitation: inv})
}

func (s *Server) createTeam(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	var req team.CreateRequest
	decode(body, &req)

	orgID := organizationID(deref(req.OrganizationID), sess)
	if _, ok := s.orgs[orgID]; !ok {
		writeError(w, http.StatusBadRequest, "NO_ACTIVE_ORGANIZATION", "No active organization")
		return
	}

	t := team.Team{
		ID:             s.nextID("team"),
		Name:           req.Name,
		OrganizationID: orgID,
		CreatedAt:      time.Now().UTC(),
		AssignedGroups: req.AssignedGroups,
		Settings:       req.Settings,
	}
	s.teams = append(s.teams, t)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request, _ map[string]any, sess *session) {
	orgID := organizationID(r.URL.Query().Get("organizationId"), sess)
	teams := []team.Team{}
	for _, t := range s.teams {
		if t.OrganizationID == orgID {
			teams = append(teams, t)
		}
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) removeTeam(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	id := str(body, "teamId")
	for i, t := range s.teams {
		if t.ID == id {
			s.teams = append(s.teams[:i], s.teams[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Team removed successfully."})
			return
		}
	}
	writeError(w, http.StatusNotFound, "TEAM_NOT_FOUND", "Team not found")
}

func (s *Server) findTeam(id string) (int, bool) {
	for i, t := range s.teams {
		if t.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Server) updateTeam(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	i, ok := s.findTeam(str(body, "teamId"))
	if !ok {
		writeError(w, http.StatusNotFound, "TEAM_NOT_FOUND", "Team not found")
		return
	}

	data, _ := body["data"].(map[string]any)
	var update team.UpdateData
	decode(data, &update)

	t := &s.teams[i]
	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.AssignedGroups != nil {
		t.AssignedGroups = update.AssignedGroups
	}
	if update.Settings != nil {
		t.Settings = update.Settings
	}
	now := time.Now().UTC()
	t.UpdatedAt = &now
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) setActiveTeam(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	id := str(body, "teamId")
	if id == "" {
		sess.ActiveTeamID = nil
		setSessionCookie(w, sess.Token)
		writeJSON(w, http.StatusOK, nil)
		return
	}

	i, ok := s.findTeam(id)
	if !ok {
		writeError(w, http.StatusBadRequest, "TEAM_NOT_FOUND", "Team not found")
		return
	}
	sess.ActiveTeamID = &id
	setSessionCookie(w, sess.Token)
	writeJSON(w, http.StatusOK, s.teams[i])
}

func (s *Server) addTeamMember(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	teamID := str(body, "teamId")
	if _, ok := s.findTeam(teamID); !ok {
		writeError(w, http.StatusBadRequest, "TEAM_NOT_FOUND", "Team not found")
		return
	}

	m := team.Member{
		ID:        s.nextID("team_member"),
		TeamID:    teamID,
		UserID:    str(body, "userId"),
		CreatedAt: time.Now().UTC(),
	}
	s.teamMembers = append(s.teamMembers, m)
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) removeTeamMember(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	teamID, userID := str(body, "teamId"), str(body, "userId")
	for i, m := range s.teamMembers {
		if m.TeamID == teamID && m.UserID == userID {
			s.teamMembers = append(s.teamMembers[:i], s.teamMembers[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Team member removed successfully."})
			return
		}
	}
	writeError(w, http.StatusBadRequest, "USER_IS_NOT_A_MEMBER_OF_THE_TEAM", "User is not a member of the team")
}

func (s *Server) banUser(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	u, ok := s.users[str(body, "userId")]
	if !ok {
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}
	u.Banned = true
	if reason := str(body, "banReason"); reason != "" {
		u.BanReason = &reason
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u.User})
}

func (s *Server) impersonateUser(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	u, ok := s.users[str(body, "userId")]
	if !ok {
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	impersonation := s.addSession(u)
	impersonation.ImpersonatedBy = &sess.UserID
	setSessionCookie(w, impersonation.Token)
	writeJSON(w, http.StatusOK, admin.Impersonation{Session: impersonation.Session, User: u.User})
}

func (s *Server) stopImpersonating(w http.ResponseWriter, _ *http.Request, _ map[string]any, sess *session) {
	if sess.ImpersonatedBy == nil {
		writeError(w, http.StatusBadRequest, "NOT_IMPERSONATING", "You are not impersonating anyone")
		return
	}

	delete(s.sessions, sess.Token)
	restored := s.addSession(s.users[*sess.ImpersonatedBy])
	setSessionCookie(w, restored.Token)
	writeJSON(w, http.StatusOK, auth.CurrentSession{Session: restored.Session, User: s.users[restored.UserID].User})
}

func (s *Server) upgradeSubscription(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	plan := str(body, "plan")
	if plan != strings.ToLower(plan) {
		writeError(w, http.StatusBadRequest, "SUBSCRIPTION_PLAN_NOT_FOUND", "Subscription plan not found")
		return
	}
	writeJSON(w, http.StatusOK, billing.Redirect{URL: "https://checkout.stripe.test/" + plan, Redirect: true})
}

func (s *Server) cancelSubscription(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	writeJSON(w, http.StatusOK, billing.Redirect{URL: str(body, "returnUrl"), Redirect: true})
}

func (s *Server) restoreSubscription(w http.ResponseWriter, _ *http.Request, body map[string]any, sess *session) {
	id := str(body, "subscriptionId")
	if id == "" {
		id = s.nextID("sub")
	}
	reference := str(body, "referenceId")
	if reference == "" {
		reference = sess.UserID
	}
	writeJSON(w, http.StatusOK, billing.Subscription{ID: id, Plan: "starter", ReferenceID: reference, Status: "active"})
}

func (s *Server) billingPortal(w http.ResponseWriter, _ *http.Request, body map[string]any, _ *session) {
	writeJSON(w, http.StatusOK, billing.Redirect{URL: "https://billing.stripe.test/session?return=" + url.QueryEscape(str(body, "returnUrl")), Redirect: true})
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

func str(body map[string]any, key string) string {
	v, _ := body[key].(string)
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// decode converts a generic body into a typed request.
func decode(body map[string]any, out any) {
	raw, _ := json.Marshal(body)
	_ = json.Unmarshal(raw, out)
}
