package controllers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestGetModules(t *testing.T) {
	token, _ := registerUser(t, "catalog")

	req := httptestListModules(t, token)
	assert.Len(t, req, 3)
	for _, m := range req {
		assert.Equal(t, false, m["completed"])
		assert.NotEmpty(t, m["title"])
	}
}

func httptestListModules(t *testing.T, token string) []map[string]interface{} {
	t.Helper()

	resp, err := app.Test(newAuthedRequest(t, "GET", "/api/modules", token), -1)
	if err != nil {
		t.Fatalf("list modules: %v", err)
	}
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var modules []map[string]interface{}
	decodeBody(t, resp, &modules)
	return modules
}

func TestGetModuleDetailsWithholdsAnswer(t *testing.T) {
	token, _ := registerUser(t, "details")

	resp, result := doRequest(t, "GET", "/api/modules/1", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	module := result["module"].(map[string]interface{})
	assert.NotEmpty(t, module["question"])
	assert.NotEmpty(t, module["options"])
	assert.NotContains(t, module, "correct_answer")
	assert.Equal(t, false, result["completed"])
}

func TestGetModuleNotFound(t *testing.T) {
	token, _ := registerUser(t, "missing")

	resp, _ := doRequest(t, "GET", "/api/modules/9999", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmitWrongAnswer(t *testing.T) {
	token, userID := registerUser(t, "wrong")

	// Seeded module 1 has correct answer 0
	resp, result := doRequest(t, "POST", "/api/modules/1/submit", token, map[string]int{
		"answer": 1,
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, result["correct"])
	assert.EqualValues(t, 0, result["correct_answer"])
	assert.EqualValues(t, 0, result["points_awarded"])
	assert.Equal(t, 0, userPoints(t, userID))
}

func TestSubmitCorrectAnswerCreditsOnce(t *testing.T) {
	token, userID := registerUser(t, "correct")

	resp, result := doRequest(t, "POST", "/api/modules/1/submit", token, map[string]int{
		"answer": 0,
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["correct"])
	assert.EqualValues(t, 100, result["points_awarded"])
	assert.EqualValues(t, 100, result["points"])
	assert.Equal(t, 100, userPoints(t, userID))

	// Resubmission is allowed for review but credits nothing further
	resp, result = doRequest(t, "POST", "/api/modules/1/submit", token, map[string]int{
		"answer": 0,
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["correct"])
	assert.EqualValues(t, 0, result["points_awarded"])
	assert.Equal(t, 100, userPoints(t, userID))

	modules := httptestListModules(t, token)
	assert.Equal(t, true, modules[0]["completed"])
}

func TestSubmitAnswerOutOfRange(t *testing.T) {
	token, userID := registerUser(t, "range")

	resp, _ := doRequest(t, "POST", "/api/modules/1/submit", token, map[string]int{
		"answer": 7,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, userPoints(t, userID))
}

func TestSubmitMissingAnswer(t *testing.T) {
	token, _ := registerUser(t, "noanswer")

	resp, _ := doRequest(t, "POST", "/api/modules/1/submit", token, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitUnknownModule(t *testing.T) {
	token, _ := registerUser(t, "nomodule")

	resp, _ := doRequest(t, "POST", "/api/modules/9999/submit", token, map[string]int{
		"answer": 0,
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminCreateModuleValidation(t *testing.T) {
	token, userID := registerUser(t, "modadmin")
	makeAdmin(t, userID)

	// Correct index outside the option list is rejected
	resp, _ := doRequest(t, "POST", "/api/admin/modules", token, map[string]interface{}{
		"title":          "Broken Module",
		"question":       "Is this valid?",
		"options":        []string{"yes", "no"},
		"correct_answer": 2,
		"points_reward":  50,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, "POST", "/api/admin/modules", token, map[string]interface{}{
		"title":          "Valid Module",
		"question":       "Is this valid?",
		"options":        []string{"yes", "no"},
		"correct_answer": 0,
		"points_reward":  50,
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestAdminRoutesForbiddenForUsers(t *testing.T) {
	token, _ := registerUser(t, "plainuser")

	resp, _ := doRequest(t, "POST", "/api/admin/modules", token, map[string]interface{}{
		"title": "Nope",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
