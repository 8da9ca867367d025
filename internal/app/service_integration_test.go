package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	service "github.com/relaydesk/agentrouter/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a fully assembled service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		artifact := filepath.Join(t.TempDir(), "model.json")
		svc := service.New(service.WithModelArtifactPath(artifact))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)

				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["agentCount"], ShouldEqual, 6)
				So(stats["modelTrained"], ShouldEqual, false)
			})
		})

		Convey("When routing end-to-end with the built-in analytics", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("And the question carries a clear support intent", func() {
				decision, err := svc.Route(ctx, 0, "my machine is broken, please help")
				So(err, ShouldBeNil)

				Convey("Then the decision routes to an agent", func() {
					So(decision.Outcome, ShouldEqual, "routed")
					So(decision.AgentID, ShouldNotBeNil)
					So(decision.Message, ShouldContainSubstring, decision.AgentName)
				})
			})

			Convey("And the question is Spanish with a sales intent", func() {
				decision, err := svc.Route(ctx, 2, "hola, cuánto cuesta el plan premium")
				So(err, ShouldBeNil)

				Convey("Then the decision is localized", func() {
					So(decision.Outcome, ShouldEqual, "routed")
					So(decision.Message, ShouldStartWith, "Transfiriendo a ")
				})
			})

			Convey("And the question matches no intent", func() {
				decision, err := svc.Route(ctx, 0, "the sky is blue today")
				So(err, ShouldBeNil)

				Convey("Then the contact gets the fallback message", func() {
					So(decision.Outcome, ShouldEqual, "no_intent")
					So(decision.AgentID, ShouldBeNil)
				})
			})
		})

		Convey("When training and routing afterwards", func() {
			So(svc.Start(ctx), ShouldBeNil)

			report, err := svc.Train(ctx, 10)
			So(err, ShouldBeNil)
			So(report.Samples, ShouldEqual, 19)

			Convey("Then the trained model serves routing decisions", func() {
				stats := svc.GetStats()
				So(stats["modelTrained"], ShouldEqual, true)

				decision, err := svc.Route(ctx, 1, "I need help with an error")
				So(err, ShouldBeNil)
				So(decision.Outcome, ShouldEqual, "routed")
			})
		})

		Convey("When handling the service lifecycle", func() {
			Convey("And starting and stopping multiple times", func() {
				So(svc.Start(ctx), ShouldBeNil)

				svc.Stop()
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)

				So(svc.Start(ctx), ShouldBeNil)
				stats = svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a running service under concurrent load", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		svc := service.New(service.WithModelArtifactPath(filepath.Join(t.TempDir(), "model.json")))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		questions := []struct {
			contactID int
			text      string
		}{
			{0, "my router stopped working, please help"},
			{1, "I want to buy a new license"},
			{2, "necesito ayuda con un error"},
			{0, "what is the price of the premium plan"},
		}

		Convey("When many goroutines route interactions concurrently", func() {
			const goroutines = 16
			const perGoroutine = 10

			var wg sync.WaitGroup
			errCh := make(chan error, goroutines*perGoroutine)

			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						q := questions[(id+j)%len(questions)]
						decision, err := svc.Route(ctx, q.contactID, q.text)
						if err != nil {
							errCh <- err
							continue
						}
						if decision.Message == "" {
							errCh <- context.Canceled
						}
					}
				}(i)
			}
			wg.Wait()
			close(errCh)

			Convey("Then every request completes without error", func() {
				for err := range errCh {
					So(err, ShouldBeNil)
				}
			})
		})

		Convey("When training races with routing", func() {
			var wg sync.WaitGroup
			errCh := make(chan error, 32)

			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.Train(ctx, 5); err != nil {
					errCh <- err
				}
			}()

			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					q := questions[id%len(questions)]
					if _, err := svc.Route(ctx, q.contactID, q.text); err != nil {
						errCh <- err
					}
				}(i)
			}
			wg.Wait()
			close(errCh)

			Convey("Then routing keeps serving while the model retrains", func() {
				for err := range errCh {
					So(err, ShouldBeNil)
				}
			})
		})
	})
}
