package routes_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"mercator-hq/ipecho/pkg/connection"
	"mercator-hq/ipecho/pkg/introspect"
	"mercator-hq/ipecho/pkg/routes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeObserver struct {
	observations []routes.Observation
}

func (f *fakeObserver) Observe(o routes.Observation) {
	f.observations = append(f.observations, o)
}

var _ = Describe("Dispatcher", func() {
	var (
		handler  *routes.Dispatcher
		observer *fakeObserver
		logBuf   *bytes.Buffer
		resp     *httptest.ResponseRecorder
		req      *http.Request
	)

	newRequest := func(method, path string) *http.Request {
		r := httptest.NewRequest(method, path, nil)
		r.Header = http.Header{}
		r.RemoteAddr = "203.0.113.5:51342"
		return r
	}

	body := func() string {
		b, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return string(b)
	}

	BeforeEach(func() {
		table, err := routes.NewTable(nil)
		Expect(err).NotTo(HaveOccurred())

		observer = &fakeObserver{}
		logBuf = &bytes.Buffer{}
		logger := slog.New(slog.NewJSONHandler(logBuf, nil))
		handler = routes.NewDispatcher(table, logger, observer)
		resp = httptest.NewRecorder()
	})

	Describe("GET /", func() {
		BeforeEach(func() {
			req = newRequest(http.MethodGet, "/")
		})

		Context("when the caller is curl", func() {
			BeforeEach(func() {
				req.Header.Set("User-Agent", "curl/8.0.1")
			})

			It("returns the bare address", func() {
				handler.ServeHTTP(resp, req)

				Expect(resp.Code).To(Equal(http.StatusOK))
				Expect(resp.Header().Get("Content-Type")).To(Equal("text/plain; charset=utf-8"))
				Expect(body()).To(Equal("203.0.113.5\n"))
			})

			It("reports a tool-like observation", func() {
				handler.ServeHTTP(resp, req)

				Expect(observer.observations).To(HaveLen(1))
				o := observer.observations[0]
				Expect(o.Path).To(Equal("/"))
				Expect(o.Format).To(Equal(introspect.PlainDefaultLanding))
				Expect(o.Status).To(Equal(http.StatusOK))
				Expect(o.ToolLike).To(BeTrue())
			})
		})

		Context("when the caller is a browser", func() {
			BeforeEach(func() {
				req.Header.Set("User-Agent", "Mozilla/5.0")
			})

			It("returns the address and the route listing", func() {
				handler.ServeHTTP(resp, req)

				Expect(resp.Code).To(Equal(http.StatusOK))
				b := body()
				Expect(b).To(HavePrefix("your ip is: 203.0.113.5\nother routes:\n"))
				for _, p := range []string{"/ip", "/ua", "/all", "/raw/headers", "/json/all"} {
					Expect(strings.Split(b, "\n")).To(ContainElement(p))
				}
				Expect(observer.observations[0].ToolLike).To(BeFalse())
			})
		})

		Context("when only some routes are exposed", func() {
			BeforeEach(func() {
				table, err := routes.NewTable([]string{"/", "/ip", "/json/ip"})
				Expect(err).NotTo(HaveOccurred())
				handler = routes.NewDispatcher(table, nil, nil)
			})

			It("lists only the exposed routes", func() {
				handler.ServeHTTP(resp, req)

				Expect(body()).To(Equal("your ip is: 203.0.113.5\nother routes:\n/ip\n/json/ip"))
			})

			It("does not serve the others", func() {
				handler.ServeHTTP(resp, newRequest(http.MethodGet, "/raw/headers"))

				Expect(resp.Code).To(Equal(http.StatusNotFound))
			})
		})
	})

	Describe("GET /raw/headers", func() {
		It("dumps headers with Host first", func() {
			req = newRequest(http.MethodGet, "/raw/headers")
			req.Host = "example.com"
			req.Header.Set("Accept", "*/*")

			handler.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(body()).To(Equal("Host: example.com\nAccept: */*\n"))
		})
	})

	Describe("GET /ua and /raw/useragent", func() {
		It("falls back to Unknown", func() {
			handler.ServeHTTP(resp, newRequest(http.MethodGet, "/ua"))

			Expect(body()).To(Equal("Unknown\n"))
		})

		It("echoes the user agent", func() {
			req = newRequest(http.MethodGet, "/raw/useragent")
			req.Header.Set("User-Agent", "Wget/1.21")

			handler.ServeHTTP(resp, req)

			Expect(body()).To(Equal("Wget/1.21\n"))
		})
	})

	Describe("GET /all", func() {
		It("prefixes the header dump with the address", func() {
			req = newRequest(http.MethodGet, "/all")
			req.Host = "example.com"

			handler.ServeHTTP(resp, req)

			Expect(body()).To(Equal("ip: 203.0.113.5\nHost: example.com\n"))
		})
	})

	Describe("GET /json/ip", func() {
		It("returns the address as JSON", func() {
			req = newRequest(http.MethodGet, "/json/ip")
			req.RemoteAddr = "10.0.0.1:443"

			handler.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(resp.Header().Get("Content-Type")).To(Equal("application/json; charset=utf-8"))
			Expect(body()).To(MatchJSON(`{"ip":"10.0.0.1"}`))
		})
	})

	Describe("GET /json/all", func() {
		It("merges the address with the headers", func() {
			req = newRequest(http.MethodGet, "/json/all")
			req.Host = "example.com"
			req.Header.Set("User-Agent", "curl/8.0.1")

			handler.ServeHTTP(resp, req)

			var m map[string]string
			Expect(json.Unmarshal(resp.Body.Bytes(), &m)).To(Succeed())
			Expect(m).To(Equal(map[string]string{
				"ip":         "203.0.113.5",
				"host":       "example.com",
				"user-agent": "curl/8.0.1",
			}))
		})

	})

	Describe("GET /json/headers and /json/useragent", func() {
		It("returns the headers as JSON", func() {
			req = newRequest(http.MethodGet, "/json/headers")
			req.Host = "example.com"
			req.Header.Set("Accept", "*/*")

			handler.ServeHTTP(resp, req)

			Expect(body()).To(MatchJSON(`{"host":"example.com","accept":"*/*"}`))
		})

		It("returns the user agent as JSON", func() {
			handler.ServeHTTP(resp, newRequest(http.MethodGet, "/json/useragent"))

			Expect(body()).To(MatchJSON(`{"user-agent":"Unknown"}`))
		})
	})

	Describe("connection info", func() {
		It("prefers the resolved connection info over the peer address", func() {
			req = newRequest(http.MethodGet, "/ip")
			req = req.WithContext(connection.WithInfo(req.Context(), "198.51.100.7:4711"))

			handler.ServeHTTP(resp, req)

			Expect(body()).To(Equal("198.51.100.7\n"))
		})

		It("degrades to an empty address when nothing is known", func() {
			req = newRequest(http.MethodGet, "/json/ip")
			req.RemoteAddr = ""

			handler.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(body()).To(MatchJSON(`{"ip":""}`))
		})
	})

	Describe("invalid header values", func() {
		It("fails only that request with a 500", func() {
			req = newRequest(http.MethodGet, "/raw/headers")
			req.Header["X-Binary"] = []string{"\xff\xfe"}

			handler.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusInternalServerError))
			Expect(body()).To(Equal("internal server error\n"))
			Expect(logBuf.String()).To(ContainSubstring("failed to decode request headers"))
			Expect(observer.observations[0].Status).To(Equal(http.StatusInternalServerError))

			next := httptest.NewRecorder()
			handler.ServeHTTP(next, newRequest(http.MethodGet, "/ip"))
			Expect(next.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("methods and paths", func() {
		It("rejects POST on a known path", func() {
			handler.ServeHTTP(resp, newRequest(http.MethodPost, "/ip"))

			Expect(resp.Code).To(Equal(http.StatusMethodNotAllowed))
			Expect(resp.Header().Get("Allow")).To(Equal("GET, HEAD"))
			Expect(observer.observations).To(BeEmpty())
		})

		It("returns 404 for unknown paths", func() {
			handler.ServeHTTP(resp, newRequest(http.MethodGet, "/nope"))

			Expect(resp.Code).To(Equal(http.StatusNotFound))
		})

		It("answers HEAD without a body", func() {
			handler.ServeHTTP(resp, newRequest(http.MethodHead, "/ip"))

			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(resp.Header().Get("Content-Length")).To(Equal("12"))
			Expect(resp.Body.Len()).To(BeZero())
		})
	})

	Describe("over a real connection", func() {
		var server *httptest.Server

		// send writes raw as the request bytes, so header case and order
		// are exactly what a client put on the wire.
		send := func(raw string) (*http.Response, string) {
			conn, err := net.Dial("tcp", server.Listener.Addr().String())
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()
			Expect(conn.SetDeadline(time.Now().Add(5 * time.Second))).To(Succeed())

			_, err = io.WriteString(conn, raw)
			Expect(err).NotTo(HaveOccurred())

			res, err := http.ReadResponse(bufio.NewReader(conn), nil)
			Expect(err).NotTo(HaveOccurred())
			defer res.Body.Close()
			b, err := io.ReadAll(res.Body)
			Expect(err).NotTo(HaveOccurred())
			return res, string(b)
		}

		BeforeEach(func() {
			server = httptest.NewServer(handler)
		})

		AfterEach(func() {
			server.Close()
		})

		It("lets a lowercase ip header replace the address in /json/all", func() {
			res, b := send("GET /json/all HTTP/1.1\r\n" +
				"Host: example.com\r\n" +
				"ip: spoofed\r\n" +
				"Connection: close\r\n\r\n")

			Expect(res.StatusCode).To(Equal(http.StatusOK))
			Expect(b).To(MatchJSON(`{"connection":"close","host":"example.com","ip":"spoofed"}`))
		})

		It("dumps Host first, then the other names sorted", func() {
			res, b := send("GET /raw/headers HTTP/1.1\r\n" +
				"Host: example.com\r\n" +
				"X-Zeta: z\r\n" +
				"Accept: */*\r\n" +
				"Connection: close\r\n\r\n")

			Expect(res.StatusCode).To(Equal(http.StatusOK))
			Expect(b).To(Equal("Host: example.com\n" +
				"Accept: */*\n" +
				"Connection: close\n" +
				"X-Zeta: z\n"))
		})
	})
})
