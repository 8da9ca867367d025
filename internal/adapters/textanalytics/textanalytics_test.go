package textanalytics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relaydesk/agentrouter/internal/adapters/textanalytics"
	"github.com/relaydesk/agentrouter/internal/domain/model"
	"github.com/relaydesk/agentrouter/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestHTTPServiceLanguage(t *testing.T) {
	Convey("Given a language detection endpoint", t, func() {
		ctx := context.Background()

		serve := func(iso string) *httptest.Server {
			return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"documents":[{"detectedLanguages":[{"iso6391Name":"` + iso + `"}]}]}`))
			}))
		}

		Convey("When the detected language is Spanish", func() {
			srv := serve("es")
			defer srv.Close()
			svc := textanalytics.NewHTTPService(textanalytics.WithAnalyticsBaseURL(srv.URL))

			So(svc.DetectLanguage(ctx, "hola"), ShouldEqual, model.LanguageSpanish)
		})

		Convey("When the detected language is Catalan", func() {
			srv := serve("ca")
			defer srv.Close()
			svc := textanalytics.NewHTTPService(textanalytics.WithAnalyticsBaseURL(srv.URL))

			Convey("Then it routes as Spanish", func() {
				So(svc.DetectLanguage(ctx, "bon dia"), ShouldEqual, model.LanguageSpanish)
			})
		})

		Convey("When the detected language is unsupported", func() {
			srv := serve("fr")
			defer srv.Close()
			svc := textanalytics.NewHTTPService(textanalytics.WithAnalyticsBaseURL(srv.URL))

			Convey("Then it defaults to English", func() {
				So(svc.DetectLanguage(ctx, "bonjour"), ShouldEqual, model.LanguageEnglish)
			})
		})

		Convey("When the endpoint fails", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer srv.Close()
			svc := textanalytics.NewHTTPService(textanalytics.WithAnalyticsBaseURL(srv.URL))

			Convey("Then it defaults to English", func() {
				So(svc.DetectLanguage(ctx, "anything"), ShouldEqual, model.LanguageEnglish)
			})
		})
	})
}

func TestHTTPServiceSentiment(t *testing.T) {
	Convey("Given a sentiment endpoint", t, func() {
		ctx := context.Background()

		Convey("When the endpoint returns a score", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"documents":[{"score":0.83}]}`))
			}))
			defer srv.Close()
			svc := textanalytics.NewHTTPService(textanalytics.WithAnalyticsBaseURL(srv.URL))

			So(svc.DetectSentiment(ctx, "great service", model.LanguageEnglish), ShouldAlmostEqual, 0.83)
		})

		Convey("When the endpoint is unreachable", func() {
			svc := textanalytics.NewHTTPService(textanalytics.WithAnalyticsBaseURL("http://127.0.0.1:1"))

			Convey("Then it defaults to neutral", func() {
				So(svc.DetectSentiment(ctx, "anything", model.LanguageEnglish), ShouldAlmostEqual, 0.5)
			})
		})
	})
}

func TestHTTPServiceIntent(t *testing.T) {
	Convey("Given per-language intent endpoints", t, func() {
		ctx := context.Background()

		intentServer := func(name, score string) *httptest.Server {
			return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"topScoringIntent":{"intent":"` + name + `","score":` + score + `}}`))
			}))
		}

		Convey("When the English endpoint reports Sales confidently", func() {
			en := intentServer("Sales", "0.9")
			defer en.Close()
			svc := textanalytics.NewHTTPService(textanalytics.WithIntentEndpoints(en.URL, ""))

			So(svc.DetectIntent(ctx, "I want to buy", model.LanguageEnglish), ShouldEqual, model.IntentSales)
		})

		Convey("When the Spanish endpoint reports Soporte confidently", func() {
			es := intentServer("Soporte", "0.9")
			defer es.Close()
			svc := textanalytics.NewHTTPService(textanalytics.WithIntentEndpoints("", es.URL))

			So(svc.DetectIntent(ctx, "necesito ayuda", model.LanguageSpanish), ShouldEqual, model.IntentSupport)
		})

		Convey("When confidence is below the threshold", func() {
			en := intentServer("Sales", "0.2")
			defer en.Close()
			svc := textanalytics.NewHTTPService(textanalytics.WithIntentEndpoints(en.URL, ""))

			Convey("Then the intent is other", func() {
				So(svc.DetectIntent(ctx, "hmm", model.LanguageEnglish), ShouldEqual, model.IntentOther)
			})
		})

		Convey("When the intent name is unrecognized", func() {
			en := intentServer("Greeting", "0.9")
			defer en.Close()
			svc := textanalytics.NewHTTPService(textanalytics.WithIntentEndpoints(en.URL, ""))

			So(svc.DetectIntent(ctx, "hello", model.LanguageEnglish), ShouldEqual, model.IntentOther)
		})

		Convey("When the endpoint is unreachable", func() {
			svc := textanalytics.NewHTTPService(textanalytics.WithIntentEndpoints("http://127.0.0.1:1", ""))

			So(svc.DetectIntent(ctx, "anything", model.LanguageEnglish), ShouldEqual, model.IntentOther)
		})
	})
}

func TestKeyword(t *testing.T) {
	Convey("Given the keyword analytics service", t, func() {
		ctx := context.Background()
		svc := textanalytics.NewKeyword()

		Convey("When analysing Spanish text", func() {
			So(svc.DetectLanguage(ctx, "Hola, necesito ayuda"), ShouldEqual, model.LanguageSpanish)
		})

		Convey("When analysing English text", func() {
			So(svc.DetectLanguage(ctx, "My router stopped working"), ShouldEqual, model.LanguageEnglish)
		})

		Convey("When the text carries negative markers", func() {
			score := svc.DetectSentiment(ctx, "this is terrible, I want a refund", model.LanguageEnglish)
			So(score, ShouldBeLessThan, 0.5)
		})

		Convey("When the text carries positive markers", func() {
			score := svc.DetectSentiment(ctx, "great, thanks a lot", model.LanguageEnglish)
			So(score, ShouldBeGreaterThan, 0.5)
		})

		Convey("When the text is neutral", func() {
			So(svc.DetectSentiment(ctx, "the sky is blue", model.LanguageEnglish), ShouldAlmostEqual, 0.5)
		})

		Convey("When the text asks to buy", func() {
			So(svc.DetectIntent(ctx, "what is the price of the premium plan", model.LanguageEnglish), ShouldEqual, model.IntentSales)
		})

		Convey("When the text asks for help", func() {
			So(svc.DetectIntent(ctx, "I have an error, please help", model.LanguageEnglish), ShouldEqual, model.IntentSupport)
		})

		Convey("When the text matches nothing", func() {
			So(svc.DetectIntent(ctx, "the weather is nice", model.LanguageEnglish), ShouldEqual, model.IntentOther)
		})
	})
}
