package controllers_test

import (
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"tasksonline/backend/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionLifecycle(t *testing.T) {
	requireDB(t)

	_, ownerToken := registerUser(t, "teacher", "", []string{"PROG"})
	_, otherTeacher := registerUser(t, "teacher", "", []string{"PROG"})
	_, studentToken := registerUser(t, "student", "1-ISP9-72", nil)

	// Deadline already passed: the assignment starts out overdue.
	assignmentID := createAssignment(t, ownerToken, subjectID(t, "PROG"), []string{"all"}, time.Now().Add(-time.Hour))

	before := fetchStatistics(t, studentToken)

	resp := submitWork(t, studentToken, assignmentID, "my solution")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	submission := decode(t, resp)["submission"].(map[string]interface{})
	assert.Equal(t, "submitted", submission["status"])
	submissionID := uint(submission["id"].(float64))

	// Submitting moves the assignment from overdue to submitted.
	after := fetchStatistics(t, studentToken)
	assert.Equal(t, before["overdueAssignments"].(float64)-1, after["overdueAssignments"].(float64))
	assert.Equal(t, before["submittedAssignments"].(float64)+1, after["submittedAssignments"].(float64))

	// A second submit for the same assignment is rejected.
	resp = submitWork(t, studentToken, assignmentID, "again")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Only the teacher who created the assignment may grade.
	gradePath := submissionPath(submissionID) + "/grade"
	resp = doJSON(t, "PUT", gradePath, otherTeacher, map[string]interface{}{"grade": 50})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Grade outside 0..max_grade is rejected.
	resp = doJSON(t, "PUT", gradePath, ownerToken, map[string]interface{}{"grade": 150})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = doJSON(t, "PUT", gradePath, ownerToken, map[string]interface{}{"grade": -1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, "PUT", gradePath, ownerToken, map[string]interface{}{"grade": 90, "feedback": "good"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	graded := decode(t, resp)["submission"].(map[string]interface{})
	assert.Equal(t, "graded", graded["status"])
	assert.Equal(t, 90.0, graded["grade"])

	// Regrading overwrites, last write wins.
	resp = doJSON(t, "PUT", gradePath, ownerToken, map[string]interface{}{"grade": 95, "feedback": "even better"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	regraded := decode(t, resp)["submission"].(map[string]interface{})
	assert.Equal(t, "graded", regraded["status"])
	assert.Equal(t, 95.0, regraded["grade"])
	assert.Equal(t, "even better", regraded["feedback"])

	stats := fetchStatistics(t, studentToken)
	assert.Equal(t, 95.0, stats["averageGrade"])
}

func submissionPath(id uint) string {
	return "/api/submissions/" + strconv.FormatUint(uint64(id), 10)
}

func TestSubmissionDetailAccess(t *testing.T) {
	requireDB(t)

	_, ownerToken := registerUser(t, "teacher", "", []string{"DB"})
	_, otherTeacher := registerUser(t, "teacher", "", []string{"DB"})
	_, studentToken := registerUser(t, "student", "1-ISP9-73", nil)
	_, otherStudent := registerUser(t, "student", "1-ISP9-73", nil)

	assignmentID := createAssignment(t, ownerToken, subjectID(t, "DB"), []string{"1-ISP9-73"}, time.Now().Add(time.Hour))

	resp := submitWork(t, studentToken, assignmentID, "answer")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	submissionID := uint(decode(t, resp)["submission"].(map[string]interface{})["id"].(float64))

	// Owning student and owning teacher may read it.
	resp = doJSON(t, "GET", submissionPath(submissionID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doJSON(t, "GET", submissionPath(submissionID), ownerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	detail := decode(t, resp)["submission"].(map[string]interface{})
	assert.Equal(t, "1-ISP9-73", detail["group_code"])

	// Everyone else is denied.
	resp = doJSON(t, "GET", submissionPath(submissionID), otherStudent, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp = doJSON(t, "GET", submissionPath(submissionID), otherTeacher, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, "GET", "/api/submissions/999999", ownerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmitWithFilesAndDownload(t *testing.T) {
	requireDB(t)

	_, teacherToken := registerUser(t, "teacher", "", []string{"WEB"})
	_, studentToken := registerUser(t, "student", "2-ISP9-72", nil)
	assignmentID := createAssignment(t, teacherToken, subjectID(t, "WEB"), []string{"2-ISP9-72"}, time.Now().Add(time.Hour))

	resp := submitWork(t, studentToken, assignmentID, "see attachments",
		uploadFile{"index.html", []byte("<html></html>")},
		uploadFile{"style.css", []byte("body{}")},
	)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decode(t, resp)
	uploaded := result["uploadedFiles"].([]interface{})
	require.Len(t, uploaded, 2)

	stored := uploaded[0].(string)
	assert.Equal(t, "index.html", storage.OriginalName(stored))

	// The stored file can be downloaded by its generated name.
	req := httptest.NewRequest("GET", "/api/files/download/"+stored, nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	dlResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, dlResp.StatusCode)
	body, err := io.ReadAll(dlResp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body))
	assert.Contains(t, dlResp.Header.Get("Content-Disposition"), "index.html")

	// Unknown names are a 404, download requires a token.
	req = httptest.NewRequest("GET", "/api/files/download/169999-4821-missing.pdf", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	dlResp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, dlResp.StatusCode)

	req = httptest.NewRequest("GET", "/api/files/download/"+stored, nil)
	dlResp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, dlResp.StatusCode)
}

func TestSubmitRejectsDisallowedFile(t *testing.T) {
	requireDB(t)

	_, teacherToken := registerUser(t, "teacher", "", []string{"MATH"})
	_, studentToken := registerUser(t, "student", "3-ISP9-70", nil)
	assignmentID := createAssignment(t, teacherToken, subjectID(t, "MATH"), []string{"3-ISP9-70"}, time.Now().Add(time.Hour))

	resp := submitWork(t, studentToken, assignmentID, "with a bad file",
		uploadFile{"ok.txt", []byte("fine")},
		uploadFile{"payload.exe", []byte("mz")},
	)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// The rejected batch must not have produced a submission either.
	resp = submitWork(t, studentToken, assignmentID, "retry without files")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSubmitValidation(t *testing.T) {
	requireDB(t)

	_, teacherToken := registerUser(t, "teacher", "", []string{"ALG"})
	_, studentToken := registerUser(t, "student", "1-ISP9-74", nil)

	// Missing assignment id.
	resp := submitWork(t, studentToken, 0, "no assignment")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Nonexistent assignment.
	resp = submitWork(t, studentToken, 999999, "ghost")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Assignment for another group is not visible, so not submittable.
	otherGroups := createAssignment(t, teacherToken, subjectID(t, "ALG"), []string{"4-ISP9-69"}, time.Now().Add(time.Hour))
	resp = submitWork(t, studentToken, otherGroups, "not mine")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Teachers cannot submit.
	visible := createAssignment(t, teacherToken, subjectID(t, "ALG"), []string{"1-ISP9-74"}, time.Now().Add(time.Hour))
	resp = submitWork(t, teacherToken, visible, "teacher work")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubmissionLists(t *testing.T) {
	requireDB(t)

	_, ownerToken := registerUser(t, "teacher", "", []string{"PROG"})
	_, otherTeacher := registerUser(t, "teacher", "", []string{"PROG"})
	_, studentToken := registerUser(t, "student", "1-ISP9-75", nil)

	assignmentID := createAssignment(t, ownerToken, subjectID(t, "PROG"), []string{"1-ISP9-75"}, time.Now().Add(time.Hour))

	resp := submitWork(t, studentToken, assignmentID, "list me")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	submissionID := uint(decode(t, resp)["submission"].(map[string]interface{})["id"].(float64))

	listedIDs := func(token string) []uint {
		resp := doJSON(t, "GET", "/api/submissions", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		rows := decode(t, resp)["submissions"].([]interface{})
		ids := make([]uint, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, uint(row.(map[string]interface{})["id"].(float64)))
		}
		return ids
	}

	// The student sees their own submission, the owning teacher sees it
	// too, a teacher who did not create the assignment does not.
	assert.True(t, contains(listedIDs(studentToken), submissionID))
	assert.True(t, contains(listedIDs(ownerToken), submissionID))
	assert.False(t, contains(listedIDs(otherTeacher), submissionID))

	// Zero is a valid grade.
	resp = doJSON(t, "PUT", submissionPath(submissionID)+"/grade", ownerToken, map[string]interface{}{"grade": 0})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	graded := decode(t, resp)["submission"].(map[string]interface{})
	assert.Equal(t, 0.0, graded["grade"])
	assert.Equal(t, "graded", graded["status"])
}

func TestGradeMissingSubmission(t *testing.T) {
	requireDB(t)

	_, teacherToken := registerUser(t, "teacher", "", []string{"PROG"})
	resp := doJSON(t, "PUT", "/api/submissions/999999/grade", teacherToken, map[string]interface{}{"grade": 10})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
