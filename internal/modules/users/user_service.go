package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"fleet-dispatch/internal/models"
	"fleet-dispatch/internal/modules/orders"
	emailSvc "fleet-dispatch/pkg/email"
	"fleet-dispatch/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

// ServiceInterface defines user business logic: authentication, the
// availability resolver and the driver read views.
type ServiceInterface interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	HandleGoogleLogin() (redirectURL, state string, err error)
	HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error)

	// IsAvailable answers from the committed set of in_progress orders, never
	// from the cached flag. It is always consistent with the order state the
	// last transaction left behind.
	IsAvailable(ctx context.Context, driverID string) (bool, error)

	ListDrivers(ctx context.Context, sort string, availableOnly bool) ([]models.DriverView, error)
	GetDriverDetail(ctx context.Context, driverID string) (*models.DriverDetailView, error)
}

// OrderDirectory is the slice of the order store the user service needs for
// derived availability and the driver detail join.
type OrderDirectory interface {
	CountActiveByDriver(ctx context.Context, driverID string) (int, error)
	ListByDriver(ctx context.Context, driverID string) ([]models.Order, error)
	FetchVehicles(ctx context.Context, vehicleIDs []string) (map[string]models.Vehicle, error)
}

type Service struct {
	userRepo          RepositoryInterface
	orderDir          OrderDirectory
	emailer           emailSvc.ServiceInterface
	templateManager   *emailSvc.TemplateManager
	jwtSecret         string
	googleOAuthConfig *oauth2.Config
}

func NewService(
	userRepo RepositoryInterface,
	orderDir OrderDirectory,
	emailer emailSvc.ServiceInterface,
	tm *emailSvc.TemplateManager,
	jwtSecret string,
	googleOAuthConfig *oauth2.Config,
) ServiceInterface {
	return &Service{
		userRepo:          userRepo,
		orderDir:          orderDir,
		emailer:           emailer,
		templateManager:   tm,
		jwtSecret:         jwtSecret,
		googleOAuthConfig: googleOAuthConfig,
	}
}

// googleUserInfo is the subset of the Google userinfo response we consume.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// Signup creates a new driver or dispatcher account and logs it in.
// Drivers must provide phone and license number and start out available.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	if req.Role == models.RoleDriver && (req.Phone == "" || req.LicenseNumber == "") {
		return nil, models.ErrMissingFields
	}

	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Signup.FindByEmail: %w", err)
	}
	if err == nil {
		return nil, models.ErrConflict
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.HashPassword: %w", err)
	}

	newUser := &models.User{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  string(hashedPassword),
		Role:          req.Role,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
	}
	if req.Role == models.RoleDriver {
		available := true
		newUser.Availability = &available
	}

	createdUser, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.CreateUser: %w", err)
	}

	s.sendWelcomeEmail(createdUser)

	return s.generateAuthResponse(createdUser)
}

// sendWelcomeEmail mails the new account asynchronously; a mail failure
// never fails the signup.
func (s *Service) sendWelcomeEmail(user *models.User) {
	if s.emailer == nil || s.templateManager == nil {
		return
	}

	htmlContent, err := s.templateManager.GenerateWelcomeEmailHTML(emailSvc.TemplateData{
		Name: user.Name,
		Role: user.Role,
	})
	if err != nil {
		log.Printf("Failed to generate welcome email HTML: %v", err)
		return
	}

	subject := "Welcome to the fleet dispatch platform"
	plainText := fmt.Sprintf("Hi %s, your %s account is ready to use.", user.Name, user.Role)

	go func() {
		if err := s.emailer.SendEmail(context.Background(), user.Email, subject, plainText, htmlContent); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}()
}

func (s *Service) generateAuthResponse(user *models.User) (*models.AuthResponse, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24 * 30)),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenSignedString, err := accessToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &models.AuthResponse{
		AccessToken: tokenSignedString,
		User:        &sanitized,
	}, nil
}

// Login verifies credentials against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service.Login.FindByEmail: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.generateAuthResponse(user)
}

// HandleGoogleLogin builds the consent-screen redirect with a fresh state
// token the handler stores in a short-lived cookie.
func (s *Service) HandleGoogleLogin() (string, string, error) {
	state, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", "", fmt.Errorf("service.HandleGoogleLogin: %w", err)
	}
	return s.googleOAuthConfig.AuthCodeURL(state), state, nil
}

// HandleGoogleCallback exchanges the authorization code, resolves the Google
// account and logs the matching dispatcher in, provisioning the account on
// first login.
func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error) {
	token, err := s.googleOAuthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.Exchange: %w", err)
	}

	client := s.googleOAuthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.UserInfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service.HandleGoogleCallback: userinfo returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.ReadBody: %w", err)
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.Unmarshal: %w", err)
	}
	if !info.VerifiedEmail {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, info.Email)
	if errors.Is(err, models.ErrNotFound) {
		user, err = s.provisionDispatcher(ctx, info)
	}
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback: %w", err)
	}

	return s.generateAuthResponse(user)
}

// provisionDispatcher creates a dispatcher account for a first-time Google
// login. The stored hash is random so the account cannot be entered through
// the password flow.
func (s *Service) provisionDispatcher(ctx context.Context, info googleUserInfo) (*models.User, error) {
	randomSecret, err := utils.GenerateSecureToken(24)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(randomSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         info.Name,
		Email:        info.Email,
		PasswordHash: string(hash),
		Role:         models.RoleDispatcher,
	}
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.sendWelcomeEmail(created)
	return created, nil
}

// IsAvailable derives availability from the committed order set: a driver is
// free iff they have zero in_progress orders.
func (s *Service) IsAvailable(ctx context.Context, driverID string) (bool, error) {
	driver, err := s.userRepo.FindByID(ctx, driverID)
	if err != nil {
		return false, fmt.Errorf("service.IsAvailable: %w", err)
	}
	if driver.Role != models.RoleDriver {
		return false, models.ErrNotADriver
	}

	active, err := s.orderDir.CountActiveByDriver(ctx, driverID)
	if err != nil {
		return false, fmt.Errorf("service.IsAvailable: %w", err)
	}
	return active == 0, nil
}

// ListDrivers returns driver accounts as views. The listing reads the
// materialized availability cache; the cache is refreshed transactionally by
// every lifecycle transition, so it cannot drift from the derived value.
func (s *Service) ListDrivers(ctx context.Context, sort string, availableOnly bool) ([]models.DriverView, error) {
	drivers, err := s.userRepo.ListDrivers(ctx, sort, availableOnly)
	if err != nil {
		return nil, fmt.Errorf("service.ListDrivers: %w", err)
	}

	views := make([]models.DriverView, 0, len(drivers))
	for _, d := range drivers {
		views = append(views, newDriverView(d))
	}
	return views, nil
}

// GetDriverDetail joins a driver with their current in-progress order (and
// its vehicle) plus the finished-order history.
func (s *Service) GetDriverDetail(ctx context.Context, driverID string) (*models.DriverDetailView, error) {
	driver, err := s.userRepo.FindByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("service.GetDriverDetail: %w", err)
	}
	if driver.Role != models.RoleDriver {
		return nil, models.ErrNotADriver
	}

	driverOrders, err := s.orderDir.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("service.GetDriverDetail: %w", err)
	}

	current, history := orders.FilterOrderHistory(driverOrders)

	_, vehicleIDs := orders.CollectRefs(driverOrders)
	vehicles, err := s.orderDir.FetchVehicles(ctx, vehicleIDs)
	if err != nil {
		return nil, fmt.Errorf("service.GetDriverDetail: %w", err)
	}

	names := map[string]string{driver.ID: driver.Name}

	view := newDriverView(*driver)
	view.Available = current == nil

	detail := &models.DriverDetailView{
		Driver:       view,
		OrderHistory: orders.EnrichOrders(history, names, vehicles),
	}
	if current != nil {
		currentView := orders.EnrichOrder(*current, names, vehicles)
		detail.CurrentOrder = &currentView
	}
	return detail, nil
}

// newDriverView maps an account to its public view, dropping the credential
// hash and defaulting a never-written cache flag to available.
func newDriverView(u models.User) models.DriverView {
	available := true
	if u.Availability != nil {
		available = *u.Availability
	}
	return models.DriverView{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		LicenseNumber: u.LicenseNumber,
		Available:     available,
		CreatedAt:     u.CreatedAt,
	}
}
