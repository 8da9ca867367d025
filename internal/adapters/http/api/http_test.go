package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/relaydesk/agentrouter/internal/adapters/http/api"
	"github.com/relaydesk/agentrouter/internal/adapters/repository"
	"github.com/relaydesk/agentrouter/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockService scripts every dependency the handlers use.
type mockService struct {
	decision      api.Decision
	routeErr      error
	candidates    []model.Candidate
	candidatesErr error
	ranked        []model.RankedCandidate
	rankErr       error
	report        api.TrainReport
	trainErr      error

	lastContactID int
	lastQuestion  string
	lastLanguage  model.Language
	lastIntent    model.Intent
	lastAgentIDs  []int
	lastEpochs    int
}

func (m *mockService) Route(_ context.Context, contactID int, question string) (api.Decision, error) {
	m.lastContactID = contactID
	m.lastQuestion = question
	if m.routeErr != nil {
		return api.Decision{}, m.routeErr
	}
	return m.decision, nil
}

func (m *mockService) GenerateCandidates(_ context.Context, lang model.Language, intent model.Intent) ([]model.Candidate, error) {
	m.lastLanguage = lang
	m.lastIntent = intent
	return m.candidates, m.candidatesErr
}

func (m *mockService) RankCandidates(_ context.Context, contactID int, _ model.InteractionContext, agentIDs []int) ([]model.RankedCandidate, error) {
	m.lastContactID = contactID
	m.lastAgentIDs = agentIDs
	if m.rankErr != nil {
		return nil, m.rankErr
	}
	return m.ranked, nil
}

func (m *mockService) Train(_ context.Context, epochs int) (api.TrainReport, error) {
	m.lastEpochs = epochs
	if m.trainErr != nil {
		return api.TrainReport{}, m.trainErr
	}
	return m.report, nil
}

func (m *mockService) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(svc *mockService) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestRouteEndpoint(t *testing.T) {
	Convey("Given the routing API", t, func() {
		agentID := 4
		svc := &mockService{decision: api.Decision{
			DecisionID: "d-1",
			Message:    "Directing to Harry, from support department. Nice talking to you!",
			Outcome:    "routed",
			AgentID:    &agentID,
			AgentName:  "Harry",
			Language:   model.LanguageEnglish,
			Intent:     model.IntentSupport,
		}}
		srv := newTestServer(svc)
		defer srv.Close()

		Convey("When posting a valid question", func() {
			resp := postJSON(t, srv.URL+"/route", `{"contact_id":1,"question":"my fridge is broken"}`)

			Convey("Then the decision comes back with the agent", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				decision := decode[api.Decision](t, resp)
				So(decision.Outcome, ShouldEqual, "routed")
				So(decision.AgentName, ShouldEqual, "Harry")
				So(svc.lastContactID, ShouldEqual, 1)
				So(svc.lastQuestion, ShouldEqual, "my fridge is broken")
			})
		})

		Convey("When the body is missing fields", func() {
			resp := postJSON(t, srv.URL+"/route", `{"question":"hi"}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp = postJSON(t, srv.URL+"/route", `{"contact_id":1}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not JSON", func() {
			resp := postJSON(t, srv.URL+"/route", `not json`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the contact is unknown", func() {
			svc.routeErr = fmt.Errorf("contact 9: %w", repository.ErrContactNotFound)
			resp := postJSON(t, srv.URL+"/route", `{"contact_id":9,"question":"hi"}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the service fails", func() {
			svc.routeErr = fmt.Errorf("model exploded")
			resp := postJSON(t, srv.URL+"/route", `{"contact_id":1,"question":"hi"}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(srv.URL + "/route")
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCandidatesEndpoint(t *testing.T) {
	Convey("Given the routing API", t, func() {
		svc := &mockService{candidates: []model.Candidate{
			{AgentID: 0, SkillScore: 1.75},
			{AgentID: 4, SkillScore: 1.75},
			{AgentID: 1, SkillScore: 1.5},
		}}
		srv := newTestServer(svc)
		defer srv.Close()

		Convey("When querying with language and intent", func() {
			resp, err := http.Get(srv.URL + "/candidates?language=en&intent=support")
			So(err, ShouldBeNil)

			Convey("Then the shortlist comes back in order", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				body := decode[map[string][]map[string]float64](t, resp)
				So(body["candidates"], ShouldHaveLength, 3)
				So(body["candidates"][0]["agent_id"], ShouldEqual, 0)
				So(svc.lastLanguage, ShouldEqual, model.LanguageEnglish)
				So(svc.lastIntent, ShouldEqual, model.IntentSupport)
			})
		})

		Convey("When a parameter is missing", func() {
			resp, err := http.Get(srv.URL + "/candidates?language=en")
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRankEndpoint(t *testing.T) {
	Convey("Given the routing API", t, func() {
		svc := &mockService{ranked: []model.RankedCandidate{
			{AgentID: 4, Score: 0.9},
			{AgentID: 0, Score: 0.6},
		}}
		srv := newTestServer(svc)
		defer srv.Close()

		Convey("When posting a valid rank request", func() {
			resp := postJSON(t, srv.URL+"/rank",
				`{"contact_id":0,"language":"en","sentiment":0.5,"intent":"support","agent_ids":[0,4]}`)

			Convey("Then the ranked list comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				body := decode[map[string][]model.RankedCandidate](t, resp)
				So(body["ranked"], ShouldHaveLength, 2)
				So(body["ranked"][0].AgentID, ShouldEqual, 4)
				So(svc.lastAgentIDs, ShouldResemble, []int{0, 4})
			})
		})

		Convey("When agent_ids is empty", func() {
			resp := postJSON(t, srv.URL+"/rank", `{"contact_id":0,"agent_ids":[]}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When sentiment is out of range", func() {
			resp := postJSON(t, srv.URL+"/rank", `{"contact_id":0,"sentiment":1.5,"agent_ids":[0]}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When an agent id is unknown", func() {
			svc.rankErr = fmt.Errorf("agent 42: %w", repository.ErrAgentNotFound)
			resp := postJSON(t, srv.URL+"/rank",
				`{"contact_id":0,"language":"en","sentiment":0.5,"intent":"support","agent_ids":[42]}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestTrainEndpoint(t *testing.T) {
	Convey("Given the routing API", t, func() {
		svc := &mockService{report: api.TrainReport{Epochs: 500, Samples: 19, Loss: 0.02}}
		srv := newTestServer(svc)
		defer srv.Close()

		Convey("When posting with explicit epochs", func() {
			resp := postJSON(t, srv.URL+"/train", `{"epochs":25}`)

			Convey("Then the report comes back and epochs pass through", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				report := decode[api.TrainReport](t, resp)
				So(report.Samples, ShouldEqual, 19)
				So(svc.lastEpochs, ShouldEqual, 25)
			})
		})

		Convey("When posting an empty body", func() {
			resp := postJSON(t, srv.URL+"/train", "")

			Convey("Then the service default applies", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				resp.Body.Close()
				So(svc.lastEpochs, ShouldEqual, 0)
			})
		})

		Convey("When training fails", func() {
			svc.trainErr = fmt.Errorf("empty dataset")
			resp := postJSON(t, srv.URL+"/train", `{"epochs":5}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the routing API", t, func() {
		svc := &mockService{}
		srv := newTestServer(svc)
		defer srv.Close()

		Convey("When checking health", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decode[map[string]string](t, resp)
			So(body["status"], ShouldEqual, "ok")
		})

		Convey("When reading stats", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body := decode[map[string]interface{}](t, resp)
			So(body["started"], ShouldEqual, true)
		})

		Convey("When scraping metrics", func() {
			resp, err := http.Get(srv.URL + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "text")
		})
	})
}

func TestRouteValidation(t *testing.T) {
	Convey("Given a route request payload", t, func() {
		Convey("When the question is only whitespace", func() {
			svc := &mockService{}
			srv := newTestServer(svc)
			defer srv.Close()

			resp := postJSON(t, srv.URL+"/route", `{"contact_id":0,"question":"   "}`)
			defer resp.Body.Close()

			Convey("Then it is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(strings.Contains(body["message"], "question"), ShouldBeTrue)
			})
		})
	})
}
