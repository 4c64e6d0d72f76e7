package tests

import (
	"net/http"
	"net/url"
)

func (s *FrontendSuite) TestLogin_InvalidCredentialsStayOnForm() {
	code, body := s.post("/auth/login", url.Values{
		"phone":    {"0799999999"},
		"password": {"wrongpass"},
	})

	s.Equal(http.StatusUnauthorized, code)
	s.Contains(body, "Invalid credentials")
	s.Contains(body, `id="login-form"`)
	s.Contains(body, `value="0799999999"`)
}

func (s *FrontendSuite) TestLogin_UnreadableErrorBody() {
	s.backend.LoginStatus = http.StatusBadGateway
	s.backend.LoginBody = "<html>upstream down</html>"

	code, body := s.post("/auth/login", url.Values{
		"phone":    {"0711000111"},
		"password": {"secret123"},
	})

	s.Equal(http.StatusBadGateway, code)
	s.Contains(body, "Network error")
}

func (s *FrontendSuite) TestLogin_DashboardThenLogout() {
	code, body := s.post("/auth/login", url.Values{
		"phone":    {"0711000111"},
		"password": {"secret123"},
	})

	s.Equal(http.StatusOK, code)
	s.Contains(body, "Otieno Kamau")
	s.Contains(body, "KES 40.00")
	s.Contains(body, "Need KES 60.00 more")
	s.Contains(body, "No transactions yet.")
	s.Contains(s.backend.AuthHeaders(), "Bearer "+s.token)

	code, body = s.post("/logout", nil)
	s.Equal(http.StatusOK, code)
	s.Contains(body, `href="/login"`)

	s.get("/dashboard/d1")
	headers := s.backend.AuthHeaders()
	s.Empty(headers[len(headers)-1])
}

func (s *FrontendSuite) TestRegister_PasswordRulesCheckedLocally() {
	form := url.Values{
		"first_name":       {"Otieno"},
		"last_name":        {"Kamau"},
		"email":            {"otieno@example.com"},
		"phone":            {"0711000222"},
		"vehicle_type":     {"boda"},
		"vehicle_number":   {"KMEA 999Z"},
		"password":         {"secret123"},
		"confirm_password": {"secret124"},
	}

	code, body := s.post("/auth/register", form)
	s.Equal(http.StatusBadRequest, code)
	s.Contains(body, "Passwords do not match")

	form.Set("password", "short")
	form.Set("confirm_password", "short")
	code, body = s.post("/auth/register", form)
	s.Equal(http.StatusBadRequest, code)
	s.Contains(body, "Password must be at least 8 characters")
}

func (s *FrontendSuite) TestLookup() {
	code, body := s.post("/login", url.Values{"driver_id": {"d1"}})
	s.Equal(http.StatusOK, code)
	s.Contains(body, `id="pay-form"`)
	s.Contains(body, "Otieno Kamau")

	code, body = s.post("/login", url.Values{"driver_id": {"ghost"}})
	s.Equal(http.StatusNotFound, code)
	s.Contains(body, "Driver ID not found. Please check and try again.")
}

func (s *FrontendSuite) TestHealthAndMetrics() {
	code, _ := s.get("/health")
	s.Equal(http.StatusOK, code)

	code, body := s.get("/metrics")
	s.Equal(http.StatusOK, code)
	s.Contains(body, "payswiftly_")
}
