package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type mockRagService struct {
	mock.Mock
}

func (m *mockRagService) ProcessQuestion(ctx context.Context, userId uint, req *dto.QuestionRequest) (*dto.AnswerResponse, error) {
	args := m.Called(ctx, userId, req)
	res, _ := args.Get(0).(*dto.AnswerResponse)
	return res, args.Error(1)
}

func (m *mockRagService) ProcessAudioQuestion(ctx context.Context, userId uint, audio []byte, filename string, sessionId *string) (*dto.AnswerResponse, error) {
	args := m.Called(ctx, userId, audio, filename, sessionId)
	res, _ := args.Get(0).(*dto.AnswerResponse)
	return res, args.Error(1)
}

func (m *mockRagService) GetQuestionHistory(ctx context.Context, userId uint, limit int) ([]*dto.QAPairResponse, error) {
	args := m.Called(ctx, userId, limit)
	res, _ := args.Get(0).([]*dto.QAPairResponse)
	return res, args.Error(1)
}

func (m *mockRagService) GetSessionHistory(ctx context.Context, userId uint, sessionId string) ([]*dto.QAPairResponse, error) {
	args := m.Called(ctx, userId, sessionId)
	res, _ := args.Get(0).([]*dto.QAPairResponse)
	return res, args.Error(1)
}

func (m *mockRagService) DeleteQuestion(ctx context.Context, userId uint, questionId uint) error {
	return m.Called(ctx, userId, questionId).Error(0)
}

func (m *mockRagService) GetUserStats(ctx context.Context, userId uint) (*dto.UserStatsResponse, error) {
	args := m.Called(ctx, userId)
	res, _ := args.Get(0).(*dto.UserStatsResponse)
	return res, args.Error(1)
}

type mockFileService struct {
	mock.Mock
}

func (m *mockFileService) Upload(ctx context.Context, userId uint, filename string, data []byte) (*dto.UploadFileResponse, error) {
	args := m.Called(ctx, userId, filename, data)
	res, _ := args.Get(0).(*dto.UploadFileResponse)
	return res, args.Error(1)
}

func (m *mockFileService) ListDocuments(ctx context.Context, userId uint) ([]*dto.FileResponse, error) {
	args := m.Called(ctx, userId)
	res, _ := args.Get(0).([]*dto.FileResponse)
	return res, args.Error(1)
}

func (m *mockFileService) GetContent(ctx context.Context, userId uint, id uint) (*service.FileContent, error) {
	args := m.Called(ctx, userId, id)
	res, _ := args.Get(0).(*service.FileContent)
	return res, args.Error(1)
}

func (m *mockFileService) Delete(ctx context.Context, userId uint, id uint) error {
	return m.Called(ctx, userId, id).Error(0)
}

func newTestApp(t *testing.T, rag service.IRagService, files service.IFileService) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewRagController(rag).RegisterRoutes(api)
	NewFileController(files).RegisterRoutes(api)
	return app
}

func bearer(t *testing.T, userId uint) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userId}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	req.Header.Set("Authorization", bearer(t, 7))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func multipartRequest(t *testing.T, target, field, filename string, data []byte, extra map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range extra {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAsk(t *testing.T) {
	rag := &mockRagService{}
	rag.On("ProcessQuestion", mock.Anything, uint(7), &dto.QuestionRequest{Question: "What is covered?"}).
		Return(&dto.AnswerResponse{Answer: "Everything.", ConfidenceScore: 0.8, QuestionId: 3, Sources: []dto.SourceReference{}, Images: []dto.ImageReference{}}, nil)
	app := newTestApp(t, rag, &mockFileService{})

	status, body := do(t, app, jsonRequest(http.MethodPost, "/api/rag/ask", `{"question":"What is covered?"}`))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Everything.", data["answer"])
	assert.Equal(t, float64(3), data["question_id"])
	rag.AssertExpectations(t)
}

func TestAsk_Validation(t *testing.T) {
	rag := &mockRagService{}
	app := newTestApp(t, rag, &mockFileService{})

	status, body := do(t, app, jsonRequest(http.MethodPost, "/api/rag/ask", `{"question":""}`))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, _ = do(t, app, jsonRequest(http.MethodPost, "/api/rag/ask", `{"question":"`+strings.Repeat("a", 1001)+`"}`))
	assert.Equal(t, http.StatusBadRequest, status)

	rag.AssertNotCalled(t, "ProcessQuestion", mock.Anything, mock.Anything, mock.Anything)
}

func TestAsk_RequiresToken(t *testing.T) {
	app := newTestApp(t, &mockRagService{}, &mockFileService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/rag/ask", `{"question":"q"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAsk_RecordFailureIs500(t *testing.T) {
	rag := &mockRagService{}
	rag.On("ProcessQuestion", mock.Anything, uint(7), mock.Anything).Return(nil, assert.AnError)
	app := newTestApp(t, rag, &mockFileService{})

	status, body := do(t, app, jsonRequest(http.MethodPost, "/api/rag/ask", `{"question":"q"}`))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["message"])
}

func TestAskVoice(t *testing.T) {
	rag := &mockRagService{}
	session := "s-9"
	rag.On("ProcessAudioQuestion", mock.Anything, uint(7), []byte("RIFFdata"), "q.wav", &session).
		Return(&dto.AnswerResponse{Answer: "ok", QuestionId: 4}, nil)
	app := newTestApp(t, rag, &mockFileService{})

	req := multipartRequest(t, "/api/rag/ask-voice", "audio_file", "q.wav", []byte("RIFFdata"), map[string]string{"session_id": "s-9"})
	status, body := do(t, app, req)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["data"].(map[string]interface{})["answer"])
	rag.AssertExpectations(t)
}

func TestAskVoice_MissingFile(t *testing.T) {
	app := newTestApp(t, &mockRagService{}, &mockFileService{})

	req := multipartRequest(t, "/api/rag/ask-voice", "other", "q.wav", []byte("x"), nil)
	status, _ := do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHistorySessionStats(t *testing.T) {
	rag := &mockRagService{}
	rag.On("GetQuestionHistory", mock.Anything, uint(7), 20).Return([]*dto.QAPairResponse{}, nil)
	rag.On("GetSessionHistory", mock.Anything, uint(7), "abc").Return([]*dto.QAPairResponse{}, nil)
	rag.On("GetUserStats", mock.Anything, uint(7)).Return(&dto.UserStatsResponse{TotalQuestions: 2, TotalAnswers: 2, AvgConfidence: 0.5}, nil)
	app := newTestApp(t, rag, &mockFileService{})

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/api/rag/history?limit=20", nil))
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/rag/session/abc", nil))
	assert.Equal(t, http.StatusOK, status)

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/rag/stats", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0.5, body["data"].(map[string]interface{})["avg_confidence"])

	rag.AssertExpectations(t)
}

func TestDeleteQuestion(t *testing.T) {
	rag := &mockRagService{}
	rag.On("DeleteQuestion", mock.Anything, uint(7), uint(5)).Return(nil)
	rag.On("DeleteQuestion", mock.Anything, uint(7), uint(6)).Return(service.ErrQuestionNotFound)
	app := newTestApp(t, rag, &mockFileService{})

	status, _ := do(t, app, httptest.NewRequest(http.MethodDelete, "/api/rag/question/5", nil))
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/rag/question/6", nil))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/rag/question/abc", nil))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUploadFile(t *testing.T) {
	files := &mockFileService{}
	files.On("Upload", mock.Anything, uint(7), "report.pdf", []byte("%PDF")).
		Return(&dto.UploadFileResponse{File: dto.FileResponse{Id: 1, OriginalFilename: "report.pdf"}}, nil)
	files.On("Upload", mock.Anything, uint(7), "notes.txt", mock.Anything).Return(nil, service.ErrUnsupportedFileType)
	app := newTestApp(t, &mockRagService{}, files)

	status, body := do(t, app, multipartRequest(t, "/api/files", "file", "report.pdf", []byte("%PDF"), nil))
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, false, body["data"].(map[string]interface{})["duplicate"])

	status, body = do(t, app, multipartRequest(t, "/api/files", "file", "notes.txt", []byte("x"), nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.ErrUnsupportedFileType.Error(), body["message"])
}

func TestFileContentAndDelete(t *testing.T) {
	files := &mockFileService{}
	files.On("GetContent", mock.Anything, uint(7), uint(1)).
		Return(&service.FileContent{Filename: "report.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil)
	files.On("Delete", mock.Anything, uint(7), uint(2)).Return(service.ErrFileNotFound)
	files.On("ListDocuments", mock.Anything, uint(7)).Return([]*dto.FileResponse{{Id: 1}}, nil)
	app := newTestApp(t, &mockRagService{}, files)

	req := httptest.NewRequest(http.MethodGet, "/api/files/1/content", nil)
	req.Header.Set("Authorization", bearer(t, 7))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, []byte("%PDF"), raw)

	status, _ := do(t, app, httptest.NewRequest(http.MethodDelete, "/api/files/2", nil))
	assert.Equal(t, http.StatusNotFound, status)

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
}
