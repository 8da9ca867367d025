package simulator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/relaydesk/agentrouter/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func intPtr(v int) *int { return &v }

func TestVerifyDecision(t *testing.T) {
	Convey("Given routing decisions to verify", t, func() {
		valid := Decision{
			DecisionID: "d-1",
			Message:    "Directing to Mike, from support department. Nice talking to you!",
			Outcome:    outcomeRouted,
			AgentID:    intPtr(0),
			AgentName:  "Mike",
			Language:   "en",
			Sentiment:  0.7,
			Intent:     "support",
		}

		Convey("When the decision is consistent", func() {
			So(verifyDecision(&valid), ShouldBeNil)
		})

		Convey("When a Spanish transfer carries the Spanish prefix", func() {
			d := valid
			d.Message = "Transfiriendo a Sandra, del departamento de ventas. ¡Encantado de hablar contigo!"
			d.AgentName = "Sandra"
			d.Language = "es"
			So(verifyDecision(&d), ShouldBeNil)
		})

		Convey("When the message is empty", func() {
			d := valid
			d.Message = ""
			So(verifyDecision(&d), ShouldNotBeNil)
		})

		Convey("When the message language does not match", func() {
			d := valid
			d.Message = "Transfiriendo a Mike, del departamento de soporte. ¡Encantado de hablar contigo!"
			So(verifyDecision(&d), ShouldNotBeNil)
		})

		Convey("When a routed decision has no agent", func() {
			d := valid
			d.AgentID = nil
			So(verifyDecision(&d), ShouldNotBeNil)
		})

		Convey("When the transfer message names a different agent", func() {
			d := valid
			d.AgentName = "Sandra"
			So(verifyDecision(&d), ShouldNotBeNil)
		})

		Convey("When a fallback decision carries an agent", func() {
			d := Decision{
				DecisionID: "d-2",
				Message:    "Sorry Mary, I couldn't understand your message...",
				Outcome:    outcomeNoIntent,
				AgentID:    intPtr(1),
				Language:   "en",
				Sentiment:  0.5,
				Intent:     "other",
			}
			So(verifyDecision(&d), ShouldNotBeNil)
		})

		Convey("When the busy message matches its language", func() {
			d := Decision{
				DecisionID: "d-3",
				Message:    "Todos los agentes humanos están ocupados en este momento. Por favor espera, tu pregunta será respondida lo más rápido posible.",
				Outcome:    outcomeAllBusy,
				Language:   "es",
				Sentiment:  0.4,
				Intent:     "support",
			}
			So(verifyDecision(&d), ShouldBeNil)
		})

		Convey("When the outcome is unknown", func() {
			d := valid
			d.Outcome = "escalated"
			So(verifyDecision(&d), ShouldNotBeNil)
		})

		Convey("When the sentiment is out of range", func() {
			d := valid
			d.Sentiment = 1.3
			So(verifyDecision(&d), ShouldNotBeNil)
		})
	})
}

func TestGenerateQuestions(t *testing.T) {
	Convey("Given a simulation config", t, func() {
		ctx := context.Background()
		config := &Config{NumRequests: 50, Workers: 4}
		stats := &Stats{}

		Convey("When generating questions", func() {
			questions := generateQuestions(ctx, config, stats)

			Convey("Then every question targets a known contact with text", func() {
				So(questions, ShouldHaveLength, 50)
				So(stats.RequestsGenerated, ShouldEqual, 50)
				for _, q := range questions {
					So(q.ContactID, ShouldBeIn, contactIDs)
					So(strings.TrimSpace(q.Text), ShouldNotBeEmpty)
				}
			})
		})
	})
}

func TestRunAgainstStubService(t *testing.T) {
	Convey("Given a stub routing service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz":
				w.Write([]byte(`{"status":"ok"}`))
			case "/route":
				var q Question
				if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				decision := Decision{
					DecisionID: "stub",
					Message:    "Directing to Mike, from support department. Nice talking to you!",
					Outcome:    outcomeRouted,
					AgentID:    intPtr(0),
					AgentName:  "Mike",
					Language:   "en",
					Sentiment:  0.5,
					Intent:     "support",
				}
				_ = json.NewEncoder(w).Encode(decision)
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		config := &Config{
			BaseURL:     srv.URL,
			NumRequests: 20,
			Workers:     4,
			Timeout:     5 * time.Second,
		}

		Convey("When running the simulation", func() {
			err := Run(context.Background(), config)

			Convey("Then every request routes and verifies", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
