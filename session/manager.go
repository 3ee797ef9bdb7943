package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Bashitha07/BMS-Restaurant-System-sub001/config"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/models"
	"github.com/Bashitha07/BMS-Restaurant-System-sub001/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

const graceKey = "snapshot"

type graceClaims struct {
	Role models.Role
}

// Snapshot is the guard's view of the session at one instant. Evaluating
// authorization against a snapshot keeps the guard pure: two evaluations
// of the same snapshot always decide the same way.
type Snapshot struct {
	State        models.SessionState
	Identity     *models.Identity
	DriverActive bool
	// HasStoredSnapshot is true while a persisted identity snapshot is
	// inside its unverified grace window.
	HasStoredSnapshot bool
	// StoredRole is the (unverified) role claim from that snapshot, empty
	// when the snapshot was unreadable.
	StoredRole models.Role
}

// Manager owns the authoritative in-memory identity for both the
// customer/staff track and the independent driver track. It is the only
// writer of the session keys in the persistent store.
type Manager struct {
	mu  sync.Mutex
	st  *store.Store
	ids *Client
	drv *Client

	identity *models.Identity
	driver   *models.DriverIdentity
	state    models.SessionState

	// grace holds unverified restored snapshot claims; entries expire
	// after the configured grace window, after which the guard stops
	// deferring on their behalf.
	grace *cache.Cache

	loginGen  uint64
	driverGen uint64

	logoutHooks []func()
}

// New creates a manager over an opened store and the two identity
// services. graceWindow bounds how long restored-but-unverified claims
// are honored.
func New(st *store.Store, identity, driver *Client, graceWindow time.Duration) *Manager {
	return &Manager{
		st:    st,
		ids:   identity,
		drv:   driver,
		state: models.StateAnonymous,
		grace: cache.New(graceWindow, graceWindow),
	}
}

// NewFromConfig opens the persistent store and wires both identity
// clients from configuration.
func NewFromConfig(cfg config.Config) (*Manager, error) {
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	return New(st,
		NewClient(cfg.IdentityServiceURL, cfg.RequestTimeout),
		NewClient(cfg.DriverServiceURL, cfg.RequestTimeout),
		cfg.GraceWindow,
	), nil
}

// AddLogoutHook registers fn to run after every customer/staff logout.
// The notification center uses this to clear its log unconditionally.
func (m *Manager) AddLogoutHook(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoutHooks = append(m.logoutHooks, fn)
}

// Restore populates the in-memory identity optimistically from the
// persistent store without server validation. A malformed snapshot or an
// expired token is logged and the raw entry kept, so a transient failure
// does not silently sign the user out.
func (m *Manager) Restore() models.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.restoreDriver()

	token, hasToken, err := m.st.Get(store.KeyToken)
	if err != nil {
		log.Printf("session: restore: read token: %v", err)
	}
	var ident models.Identity
	hasUser, uerr := m.st.GetJSON(store.KeyUser, &ident)

	switch {
	case uerr != nil:
		log.Printf("session: restore: user snapshot unusable, keeping raw entry: %v", uerr)
		m.state = models.StateRestoreFailed
		m.grace.SetDefault(graceKey, graceClaims{})
	case !hasUser && !hasToken:
		m.state = models.StateAnonymous
	case !hasUser:
		// Token without a profile snapshot: not enough to populate an
		// identity, but evidence a session existed.
		log.Printf("session: restore: token present without user snapshot")
		m.state = models.StateRestoreFailed
		m.grace.SetDefault(graceKey, graceClaims{})
	default:
		// Stored snapshots are a normalization boundary: the persisted
		// role string may predate the current normalization policy.
		ident.Role = models.NormalizeRole(string(ident.Role))
		if hasToken && tokenExpired(token) {
			log.Printf("session: restore: persisted token expired, keeping raw entry")
			m.state = models.StateRestoreFailed
			m.grace.SetDefault(graceKey, graceClaims{Role: ident.Role})
			return m.state
		}
		ident.SessionToken = token
		m.identity = &ident
		m.state = models.StateRestoredUnverified
		m.grace.SetDefault(graceKey, graceClaims{Role: ident.Role})
	}
	return m.state
}

func (m *Manager) restoreDriver() {
	dtoken, hasToken, err := m.st.Get(store.KeyDriverToken)
	if err != nil {
		log.Printf("session: restore: read driver token: %v", err)
		return
	}
	var drv models.DriverIdentity
	hasDriver, derr := m.st.GetJSON(store.KeyDriver, &drv)
	if derr != nil {
		log.Printf("session: restore: driver snapshot unusable, keeping raw entry: %v", derr)
		return
	}
	if !hasDriver {
		return
	}
	if hasToken {
		drv.SessionToken = dtoken
	}
	m.driver = &drv
}

// tokenExpired inspects the token's exp claim without verifying its
// signature; the identity service remains the verifier. Opaque non-JWT
// tokens are tolerated.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Login authenticates against the identity service. Any existing token is
// cleared before the attempt so a failed login cannot inherit stale
// headers. When several logins race, only the newest attempt's result is
// applied; older resolutions return ErrSuperseded.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*models.Identity, error) {
	m.mu.Lock()
	if m.identity != nil {
		m.identity.SessionToken = ""
	}
	if err := m.st.Delete(store.KeyToken); err != nil {
		log.Printf("session: login: clear stale token: %v", err)
	}
	m.loginGen++
	gen := m.loginGen
	m.mu.Unlock()

	resp, err := m.ids.Login(ctx, LoginRequest{Identifier: identifier, Password: password})

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.loginGen {
		return nil, ErrSuperseded
	}
	if err != nil {
		m.identity = nil
		m.state = models.StateAnonymous
		m.grace.Delete(graceKey)
		if derr := m.st.Delete(store.KeyToken, store.KeyUser); derr != nil {
			log.Printf("session: login: clear identity after failure: %v", derr)
		}
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		return nil, err
	}

	ident := identityFromLogin(identifier, resp)
	if err := m.persistIdentity(ident); err != nil {
		return nil, err
	}
	m.identity = ident
	m.state = models.StateAuthenticated
	m.grace.Delete(graceKey)
	out := *ident
	return &out, nil
}

func identityFromLogin(identifier string, resp *LoginResponse) *models.Identity {
	name := resp.Username
	if name == "" {
		name = identifier
	}
	return &models.Identity{
		ID:           resp.ID,
		DisplayName:  name,
		Email:        resp.Email,
		Role:         models.NormalizeRole(resp.Role),
		SessionToken: resp.Token,
	}
}

func (m *Manager) persistIdentity(ident *models.Identity) error {
	if ident.SessionToken != "" {
		if err := m.st.Put(store.KeyToken, ident.SessionToken); err != nil {
			return err
		}
	} else if err := m.st.Delete(store.KeyToken); err != nil {
		return err
	}
	return m.st.PutJSON(store.KeyUser, ident)
}

// Register creates an account with the same normalization and persistence
// contract as Login. When the identity service is unreachable the manager
// falls back to a local-only profile so the user is not blocked; the
// password is kept only as a bcrypt hash on that profile. A rejection by
// the service (duplicate email, weak password) is surfaced, not worked
// around.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*models.Identity, error) {
	resp, err := m.ids.Register(ctx, req)

	var ident *models.Identity
	switch {
	case err == nil:
		ident = &models.Identity{
			ID:          resp.ID,
			DisplayName: resp.Username,
			Email:       resp.Email,
			Phone:       resp.Phone,
			Role:        models.NormalizeRole(resp.Role),
		}
	default:
		var terr *TransportError
		if !errors.As(err, &terr) {
			return nil, err
		}
		hash, herr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if herr != nil {
			return nil, herr
		}
		log.Printf("session: register: identity service unreachable, creating local profile: %v", err)
		ident = &models.Identity{
			ID:           "local-" + uuid.NewString(),
			DisplayName:  req.Username,
			Email:        req.Email,
			Phone:        req.Phone,
			Role:         models.NormalizeRole(req.Role),
			PasswordHash: string(hash),
			Local:        true,
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.persistIdentity(ident); err != nil {
		return nil, err
	}
	m.identity = ident
	m.state = models.StateAuthenticated
	m.grace.Delete(graceKey)
	out := *ident
	return &out, nil
}

// Logout clears the customer/staff identity and purges every
// identity-scoped key from the persistent store, including the cart and
// cached orders owned by external collaborators. Safe to call when
// already logged out.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.identity = nil
	m.state = models.StateAnonymous
	m.grace.Delete(graceKey)
	err := m.st.Delete(store.KeyToken, store.KeyUser, store.KeyCart, store.KeyOrders)
	hooks := make([]func(), len(m.logoutHooks))
	copy(hooks, m.logoutHooks)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return err
}

// ProfilePatch carries the fields UpdateProfile may change; empty fields
// are left untouched.
type ProfilePatch struct {
	DisplayName string
	Email       string
	Phone       string
}

// UpdateProfile merges patch into the active identity and re-persists it,
// then pushes the change to the identity service best-effort. A failed
// push is logged, never a forced logout: transient network blips must not
// sign the user out.
func (m *Manager) UpdateProfile(ctx context.Context, patch ProfilePatch) (*models.Identity, error) {
	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return nil, ErrNoSession
	}
	if patch.DisplayName != "" {
		m.identity.DisplayName = patch.DisplayName
	}
	if patch.Email != "" {
		m.identity.Email = patch.Email
	}
	if patch.Phone != "" {
		m.identity.Phone = patch.Phone
	}
	if err := m.persistIdentity(m.identity); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	out := *m.identity
	m.mu.Unlock()

	if out.SessionToken != "" && !out.Local {
		profile := map[string]any{
			"username": out.DisplayName,
			"email":    out.Email,
			"phone":    out.Phone,
		}
		if err := m.ids.UpdateProfile(ctx, out.SessionToken, profile); err != nil {
			log.Printf("session: profile push failed, local copy kept: %v", err)
		}
	}
	return &out, nil
}

// LoginDriver authenticates against the driver credential service. The
// driver track has its own generation counter and persisted keys.
func (m *Manager) LoginDriver(ctx context.Context, identifier, password string) (*models.DriverIdentity, error) {
	m.mu.Lock()
	if m.driver != nil {
		m.driver.SessionToken = ""
	}
	if err := m.st.Delete(store.KeyDriverToken); err != nil {
		log.Printf("session: driver login: clear stale token: %v", err)
	}
	m.driverGen++
	gen := m.driverGen
	m.mu.Unlock()

	resp, err := m.drv.Login(ctx, LoginRequest{Identifier: identifier, Password: password})

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.driverGen {
		return nil, ErrSuperseded
	}
	if err != nil {
		m.driver = nil
		if derr := m.st.Delete(store.KeyDriverToken, store.KeyDriver); derr != nil {
			log.Printf("session: driver login: clear identity after failure: %v", derr)
		}
		return nil, err
	}

	name := resp.Username
	if name == "" {
		name = identifier
	}
	drv := &models.DriverIdentity{
		ID:           resp.ID,
		DisplayName:  name,
		SessionToken: resp.Token,
	}
	if err := m.st.Put(store.KeyDriverToken, drv.SessionToken); err != nil {
		return nil, err
	}
	if err := m.st.PutJSON(store.KeyDriver, drv); err != nil {
		return nil, err
	}
	m.driver = drv
	out := *drv
	return &out, nil
}

// RegisterDriver creates a driver account. There is no local fallback on
// the driver track: drivers cannot take deliveries offline.
func (m *Manager) RegisterDriver(ctx context.Context, req RegisterRequest) (*models.DriverIdentity, error) {
	resp, err := m.drv.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	drv := &models.DriverIdentity{
		ID:          resp.ID,
		DisplayName: resp.Username,
		Phone:       resp.Phone,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.st.PutJSON(store.KeyDriver, drv); err != nil {
		return nil, err
	}
	m.driver = drv
	out := *drv
	return &out, nil
}

// LogoutDriver clears the driver persona. Idempotent.
func (m *Manager) LogoutDriver() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driver = nil
	return m.st.Delete(store.KeyDriverToken, store.KeyDriver)
}

// bestRole resolves the role from the best available identity: in-memory
// when present, otherwise the stored snapshot claim while it is inside
// its grace window. This keeps role-gated UI from flickering to
// unauthorized during the reconciliation window after a reload.
func (m *Manager) bestRole() models.Role {
	if m.identity != nil {
		return m.identity.Role
	}
	if v, ok := m.grace.Get(graceKey); ok {
		return v.(graceClaims).Role
	}
	return ""
}

// IsAdmin reports whether the best-available identity is an administrator.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bestRole() == models.RoleAdmin
}

// IsDriver reports whether a driver persona is active. Drivers are a
// separate credential track, never an Identity with a DRIVER role.
func (m *Manager) IsDriver() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.driver != nil
}

// IsKitchen reports whether the best-available identity is kitchen staff.
func (m *Manager) IsKitchen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bestRole() == models.RoleKitchen
}

// IsManager reports whether the best-available identity is a floor manager.
func (m *Manager) IsManager() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bestRole() == models.RoleManager
}

// Identity returns a copy of the active customer/staff identity, or nil.
func (m *Manager) Identity() *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	out := *m.identity
	return &out
}

// Driver returns a copy of the active driver identity, or nil.
func (m *Manager) Driver() *models.DriverIdentity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.driver == nil {
		return nil
	}
	out := *m.driver
	return &out
}

// Snapshot captures the session for one guard evaluation.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		State:        m.state,
		DriverActive: m.driver != nil,
	}
	if m.identity != nil {
		ident := *m.identity
		snap.Identity = &ident
	}
	if v, ok := m.grace.Get(graceKey); ok {
		snap.HasStoredSnapshot = true
		snap.StoredRole = v.(graceClaims).Role
	}
	return snap
}
