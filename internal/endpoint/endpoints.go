package endpoint

import (
	"log/slog"
	"net/http"
	"strings"

	"learnhub-web/internal/api"
	"learnhub-web/internal/cache"
	"learnhub-web/internal/model"
	"learnhub-web/pkg/apierror"
)

// Invalidation tags. A mutation declaring a tag forces every cached query
// carrying the same tag to refetch on its next read.
const (
	TagCourses     cache.Tag = "Courses"
	TagEnrollments cache.Tag = "Enrollments"
	TagPayments    cache.Tag = "Payments"
	TagUser        cache.Tag = "User"
)

type SignupOTPArgs struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type VerifySignupArgs struct {
	Phone string `json:"phone"`
	Otp   string `json:"otp"`
	Name  string `json:"name"`
}

type LoginOTPArgs struct {
	Phone string `json:"phone"`
}

type VerifyLoginArgs struct {
	Phone string `json:"phone"`
	Otp   string `json:"otp"`
}

type CreateOrderArgs struct {
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency,omitempty"`
	EnrollmentID string  `json:"enrollmentId"`
	UserID       string  `json:"userId"`
}

type VerifyPaymentArgs struct {
	RazorpayOrderID   string  `json:"razorpay_order_id"`
	RazorpayPaymentID string  `json:"razorpay_payment_id"`
	RazorpaySignature string  `json:"razorpay_signature"`
	EnrollmentID      string  `json:"enrollmentId"`
	UserID            string  `json:"userId"`
	Amount            float64 `json:"amount"`
}

type UpdateUserArgs struct {
	ID        string
	Profile   model.ProfileUpdateInput
	Image     []byte
	ImageName string
}

var RequestSignupOTP = Mutation[SignupOTPArgs, model.MessageResponse]{
	Name: "requestSignupOTP",
	Request: func(a SignupOTPArgs) (api.Request, error) {
		if a.Phone == "" || a.Name == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "phone and name are required", "")
		}
		return api.Request{Method: http.MethodPost, Path: "auth/signup/request-otp", Body: a}, nil
	},
}

var VerifySignupOTP = Mutation[VerifySignupArgs, model.AuthResponse]{
	Name: "verifySignupOTP",
	Request: func(a VerifySignupArgs) (api.Request, error) {
		if a.Phone == "" || a.Otp == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "phone and otp are required", "")
		}
		return api.Request{Method: http.MethodPost, Path: "auth/signup/verify-otp", Body: a}, nil
	},
	OnCompleted: func(reg *Registry, a VerifySignupArgs, res model.AuthResponse, err error) {
		storeCredentials(reg, res, a.Phone, a.Name, err)
	},
}

var RequestLoginOTP = Mutation[LoginOTPArgs, model.MessageResponse]{
	Name: "requestLoginOTP",
	Request: func(a LoginOTPArgs) (api.Request, error) {
		if a.Phone == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "phone is required", "")
		}
		return api.Request{Method: http.MethodPost, Path: "auth/login/request-otp", Body: a}, nil
	},
}

var VerifyLoginOTP = Mutation[VerifyLoginArgs, model.AuthResponse]{
	Name: "verifyLoginOTP",
	Request: func(a VerifyLoginArgs) (api.Request, error) {
		if a.Phone == "" || a.Otp == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "phone and otp are required", "")
		}
		return api.Request{Method: http.MethodPost, Path: "auth/login/verify-otp", Body: a}, nil
	},
	OnCompleted: func(reg *Registry, a VerifyLoginArgs, res model.AuthResponse, err error) {
		storeCredentials(reg, res, a.Phone, "", err)
	},
}

// Logout clears the session whatever the server said: a dead backend must not
// leave the client stuck logged in.
var Logout = Mutation[struct{}, model.MessageResponse]{
	Name: "logout",
	Request: func(struct{}) (api.Request, error) {
		return api.Request{Method: http.MethodPost, Path: "auth/logout"}, nil
	},
	OnCompleted: func(reg *Registry, _ struct{}, _ model.MessageResponse, err error) {
		if err != nil {
			slog.Warn("logout request failed, clearing session anyway", "error", err)
		}
		if clearErr := reg.Session().Clear(); clearErr != nil {
			slog.Error("failed to clear session", "error", clearErr)
		}
	},
}

var FetchCourses = Query[struct{}, model.CourseListResponse]{
	Name: "fetchCourses",
	Tags: []cache.Tag{TagCourses},
	Request: func(struct{}) (api.Request, error) {
		return api.Request{Method: http.MethodGet, Path: "courses/getAll-courses"}, nil
	},
}

var FetchEnrollments = Query[string, model.EnrollmentListResponse]{
	Name: "fetchEnrollments",
	Tags: []cache.Tag{TagEnrollments},
	Request: func(userID string) (api.Request, error) {
		if strings.TrimSpace(userID) == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "user id is required", "")
		}
		return api.Request{Method: http.MethodGet, Path: "enrollments/" + userID}, nil
	},
}

var FetchPayment = Query[string, model.PaymentResponse]{
	Name: "fetchPayment",
	Tags: []cache.Tag{TagPayments},
	Request: func(id string) (api.Request, error) {
		if strings.TrimSpace(id) == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "payment id is required", "")
		}
		return api.Request{Method: http.MethodGet, Path: "payments/" + id}, nil
	},
}

var CreatePaymentOrder = Mutation[CreateOrderArgs, model.OrderResponse]{
	Name:        "createPaymentOrder",
	Invalidates: []cache.Tag{TagPayments},
	Request: func(a CreateOrderArgs) (api.Request, error) {
		if a.Amount <= 0 || a.EnrollmentID == "" || a.UserID == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "amount, enrollmentId and userId are required", "")
		}
		return api.Request{Method: http.MethodPost, Path: "payments/create-order", Body: a}, nil
	},
}

var VerifyPayment = Mutation[VerifyPaymentArgs, model.StatusResponse]{
	Name:        "verifyPayment",
	Invalidates: []cache.Tag{TagPayments, TagEnrollments},
	Request: func(a VerifyPaymentArgs) (api.Request, error) {
		if a.RazorpayOrderID == "" || a.RazorpayPaymentID == "" || a.RazorpaySignature == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "gateway confirmation fields are required", "")
		}
		return api.Request{Method: http.MethodPost, Path: "payments/verify", Body: a}, nil
	},
}

var DeletePayment = Mutation[string, model.StatusResponse]{
	Name:        "deletePayment",
	Invalidates: []cache.Tag{TagPayments},
	Request: func(id string) (api.Request, error) {
		if strings.TrimSpace(id) == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "payment id is required", "")
		}
		return api.Request{Method: http.MethodDelete, Path: "payments/" + id}, nil
	},
}

var UpdateUser = Mutation[UpdateUserArgs, model.UserResponse]{
	Name:        "updateUser",
	Invalidates: []cache.Tag{TagUser},
	Request: func(a UpdateUserArgs) (api.Request, error) {
		if strings.TrimSpace(a.ID) == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "user id is required", "")
		}

		form := &api.MultipartForm{
			Fields: map[string]string{
				"name":       a.Profile.Name,
				"email":      a.Profile.Email,
				"phone":      a.Profile.Phone,
				"profileURL": a.Profile.ProfileURL,
				"bio":        a.Profile.Bio,
				"skills":     strings.Join(a.Profile.Skills, ","),
			},
		}
		if len(a.Image) > 0 {
			form.FileField = "profileImage"
			form.FileName = a.ImageName
			form.File = a.Image
		}

		return api.Request{Method: http.MethodPut, Path: "users/" + a.ID, Form: form}, nil
	},
	OnCompleted: func(reg *Registry, _ UpdateUserArgs, res model.UserResponse, err error) {
		if err != nil || res.User == nil {
			return
		}
		if setErr := reg.Session().SetUser(res.User); setErr != nil {
			slog.Error("failed to persist updated user", "error", setErr)
		}
	},
}

var CreateContactMessage = Mutation[model.ContactInput, model.ContactResponse]{
	Name: "createContactMessage",
	Request: func(a model.ContactInput) (api.Request, error) {
		if a.Name == "" || a.Email == "" || a.Subject == "" {
			return api.Request{}, apierror.Validation("BAD_REQUEST", "name, email and subject are required", "")
		}
		return api.Request{Method: http.MethodPost, Path: "contacts/create-contact", Body: a}, nil
	},
}

func storeCredentials(reg *Registry, res model.AuthResponse, phone string, name string, err error) {
	if err != nil || res.Token == "" {
		return
	}

	user := res.User
	if user == nil {
		user = &model.UserSummary{Phone: phone, Name: name}
	}

	if setErr := reg.Session().SetCredentials(user, res.Token); setErr != nil {
		slog.Error("failed to persist credentials", "error", setErr)
	}
}
