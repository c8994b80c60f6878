package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"inkwell/internal/models"
)

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	name := "u" + uuid.NewString()[:8]
	email := name + "@handler-test.local"

	var reg struct {
		User  userPayload `json:"user"`
		Token string      `json:"token"`
	}
	rr := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": name,
		"email":    email,
		"password": "password123",
	}, &reg)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: got %d: %s", rr.Code, rr.Body.String())
	}
	if reg.Token == "" {
		t.Fatal("register should return a token")
	}
	if reg.User.Role != "user" {
		t.Errorf("new accounts default to user role, got %q", reg.User.Role)
	}

	var login struct {
		User  userPayload `json:"user"`
		Token string      `json:"token"`
	}
	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	}, &login)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: got %d: %s", rr.Code, rr.Body.String())
	}

	var me userPayload
	rr = env.do(t, http.MethodGet, "/api/auth/me", login.Token, nil, &me)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: got %d", rr.Code)
	}
	if me.Email != email {
		t.Errorf("me email = %q, want %q", me.Email, email)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing fields", map[string]string{"username": "x"}, http.StatusBadRequest},
		{"short password", map[string]string{
			"username": "u" + uuid.NewString()[:8],
			"email":    uuid.NewString()[:8] + "@handler-test.local",
			"password": "short",
		}, http.StatusBadRequest},
		{"bad email", map[string]string{
			"username": "u" + uuid.NewString()[:8],
			"email":    "not-an-email",
			"password": "password123",
		}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/auth/register", "", tc.body, nil)
			if rr.Code != tc.want {
				t.Errorf("got %d, want %d: %s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.newUser(t, models.RoleUser)

	rr := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "u" + uuid.NewString()[:8],
		"email":    user.Email,
		"password": "password123",
	}, nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate email: got %d, want 409: %s", rr.Code, rr.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.newUser(t, models.RoleUser)

	rr := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    user.Email,
		"password": "wrong-password",
	}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d, want 401", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@handler-test.local",
		"password": "password123",
	}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: got %d, want 401", rr.Code)
	}
}

func TestTwoFactorFlow(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, models.RoleAdmin)

	var setup struct {
		Secret     string `json:"secret"`
		OTPAuthURL string `json:"otpauth_url"`
		QRPNG      string `json:"qr_png"`
	}
	rr := env.do(t, http.MethodPost, "/api/auth/2fa/setup", token, nil, &setup)
	if rr.Code != http.StatusOK {
		t.Fatalf("setup: got %d: %s", rr.Code, rr.Body.String())
	}
	if setup.Secret == "" || setup.QRPNG == "" {
		t.Fatal("setup should return secret and QR code")
	}

	// Wrong code must not enable two-factor.
	rr = env.do(t, http.MethodPost, "/api/auth/2fa/verify", token, map[string]string{"code": "000000"}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad code: got %d, want 401", rr.Code)
	}

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	rr = env.do(t, http.MethodPost, "/api/auth/2fa/verify", token, map[string]string{"code": code}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("verify: got %d: %s", rr.Code, rr.Body.String())
	}

	// Password alone no longer logs in.
	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    user.Email,
		"password": "password123",
	}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("login without code: got %d, want 401", rr.Code)
	}

	code, err = totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":     user.Email,
		"password":  "password123",
		"totp_code": code,
	}, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("login with code: got %d: %s", rr.Code, rr.Body.String())
	}
}
