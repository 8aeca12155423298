package auth

import (
	"fmt"
	"sort"

	"github.com/asaskevich/govalidator"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// isEmail checks the address format only, it does not resolve the domain
var isEmail = validation.NewStringRule(govalidator.IsEmail, "must be a valid email address")

// SignUpRequest payload
type SignUpRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	// Role is kept as a plain string so validation.In compares like types
	Role string `json:"role" form:"role"`
}

// Validate will run validation rules
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.Required,
			validation.Length(1, 255),
		),
		validation.Field(
			&r.Email,
			validation.Required,
			validation.Length(1, 255),
			isEmail,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(6, 72),
		),
		validation.Field(
			&r.Role,
			validation.In(roleValues()...),
		),
	)
}

// Message maps the payload to the registration command
func (r SignUpRequest) Message() RegisterUserMessage {
	return RegisterUserMessage{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     UserRole(r.Role),
	}
}

// roleValues lists the accepted role strings for validation.In
func roleValues() []any {
	roles := GetAllRoles()
	values := make([]any, 0, len(roles))
	for _, r := range roles {
		values = append(values, string(r))
	}
	return values
}

// SignInRequest payload
type SignInRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			isEmail,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

type validatable interface {
	Validate() error
}

// AuthControllerRoutes holds the paths the controller mounts, relative to
// the router it is registered on
type AuthControllerRoutes struct {
	SignUp  string
	SignIn  string
	SignOut string
}

type AuthController struct {
	Logger  Logger
	Auther  Authenticator
	Session SessionCarrier
	Gate    *RouteAuthenticator
	Routes  *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = normalizeLogger(logger)
		return c
	}
}

func NewAuthController(auther Authenticator, session SessionCarrier, gate *RouteAuthenticator, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:  defLogger{},
		Auther:  auther,
		Session: session,
		Gate:    gate,
		Routes: &AuthControllerRoutes{
			SignUp:  "/sign-up",
			SignIn:  "/sign-in",
			SignOut: "/sign-out",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Session == nil {
		panic("Missing SessionCarrier in auth controller...")
	}

	if c.Gate == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts sign-up, sign-in and sign-out on r
func RegisterAuthRoutes(r fiber.Router, controller *AuthController) {
	r.Post(controller.Routes.SignUp, controller.SignUp).Name("auth.sign-up")
	r.Post(controller.Routes.SignIn, controller.SignIn).Name("auth.sign-in")
	r.Post(controller.Routes.SignOut, controller.Gate.OptionalAuth(), controller.SignOut).Name("auth.sign-out")
}

// RegisterProtectedRoutes mounts the identity gated resources on r
func RegisterProtectedRoutes(r fiber.Router, controller *AuthController) {
	gate := controller.Gate
	r.Get("/profile", gate.ProtectedRoute(), controller.resource("Profile data")).Name("protected.profile")
	r.Get("/admin", gate.ProtectedRoute(), gate.Authorize(RoleAdmin), controller.resource("Admin panel data")).Name("protected.admin")
	r.Get("/dashboard", gate.ProtectedRoute(), gate.Authorize(RoleUser, RoleAdmin), controller.resource("Dashboard data")).Name("protected.dashboard")
	r.Get("/whoami", gate.OptionalAuth(), controller.WhoAmI).Name("protected.whoami")
}

func (a *AuthController) SignUp(c *fiber.Ctx) error {
	payload := new(SignUpRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	user, token, err := a.Auther.Register(c.UserContext(), payload.Message())
	if err != nil {
		return err
	}

	a.Session.Attach(c, token)
	a.Logger.Info("user registration successful", "user_id", user.ID.String(), "email", user.Email)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "user registered",
		"user":    user.Public(),
	})
}

func (a *AuthController) SignIn(c *fiber.Ctx) error {
	payload := new(SignInRequest)
	if err := bindAndValidate(c, payload); err != nil {
		return err
	}

	user, token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	a.Session.Attach(c, token)
	a.Logger.Info("user signed in", "user_id", user.ID.String(), "email", user.Email)

	return c.JSON(fiber.Map{
		"message": "user signed in",
		"user":    user.Public(),
	})
}

// SignOut clears the session cookie whether or not one was present
func (a *AuthController) SignOut(c *fiber.Ctx) error {
	identity, _ := GetRequestIdentity(c, a.Gate.ContextKey())
	a.Session.Clear(c)
	a.Auther.Logout(c.UserContext(), identity)

	return c.JSON(fiber.Map{
		"message": "user signed out",
	})
}

// WhoAmI reports the identity of the optional session
func (a *AuthController) WhoAmI(c *fiber.Ctx) error {
	identity, ok := GetRequestIdentity(c, a.Gate.ContextKey())
	if !ok {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{
		"authenticated": true,
		"user":          identity,
	})
}

func (a *AuthController) resource(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := GetRequestIdentity(c, a.Gate.ContextKey())
		if !ok {
			return ErrIdentityMissing
		}
		return c.JSON(fiber.Map{
			"message": message,
			"user":    identity,
		})
	}
}

func bindAndValidate(c *fiber.Ctx, payload validatable) error {
	if err := c.BodyParser(payload); err != nil {
		return withDetails(withSource(ErrValidationFailed, err), []string{"body: malformed request body"})
	}

	return ValidationError(payload.Validate())
}

// ValidationError converts ozzo validation output into ErrValidationFailed
// with one "field: message" detail per field, sorted by field.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}

	errs, ok := err.(validation.Errors)
	if !ok {
		if _, internal := err.(validation.InternalError); internal {
			return internalError(err, "validation rule failed")
		}
		return withDetails(withSource(ErrValidationFailed, err), []string{err.Error()})
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	details := make([]string, 0, len(fields))
	for _, field := range fields {
		details = append(details, fmt.Sprintf("%s: %s", field, errs[field].Error()))
	}

	return withDetails(withSource(ErrValidationFailed, err), details)
}
