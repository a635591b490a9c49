package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/shopspring/decimal"
	"go-currency-converter"
	"go-currency-converter/exchange"
)

// maxRequestSize caps the body of a conversion request
const maxRequestSize = 1 << 16

// Server dependencies for HTTP Server functions
type Server struct {
	Service exchange.Service
	Logger  log.Logger
	router  *http.ServeMux
}

func NewServer(s exchange.Service, logger log.Logger) *Server {
	server := &Server{
		Service: s,
		Logger:  logger,
		router:  http.NewServeMux(),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle("/api/convert", s.convert())
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients.
	// amount may be a JSON number or a string and is required.
	type request struct {
		FromCurrency currency.Currency   `json:"fromCurrency"`
		ToCurrency   currency.Currency   `json:"toCurrency"`
		Amount       decimal.NullDecimal `json:"amount"`
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange decimal.Decimal `json:"exchange"`
		Amount   decimal.Decimal `json:"amount"`
		Original decimal.Decimal `json:"original"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		rw.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			rw.Header().Set("Allow", http.MethodPost)
			s.fail(rw, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		bytes, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, maxRequestSize))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(rw, http.StatusRequestEntityTooLarge, "request too large")
			return
		}
		if err != nil {
			s.fail(rw, http.StatusBadRequest, "invalid request")
			return
		}

		var request request
		err = json.Unmarshal(bytes, &request)
		if err != nil {
			level.Debug(s.Logger).Log("msg", "invalid json", "err", err)
			s.fail(rw, http.StatusBadRequest, "invalid json")
			return
		}
		if request.FromCurrency == "" || request.ToCurrency == "" {
			s.fail(rw, http.StatusBadRequest, "fromCurrency and toCurrency are required")
			return
		}
		if !request.FromCurrency.Valid() || !request.ToCurrency.Valid() {
			s.fail(rw, http.StatusBadRequest, "currency codes must be three letters")
			return
		}
		if !request.Amount.Valid {
			s.fail(rw, http.StatusBadRequest, "amount is required")
			return
		}
		amount := request.Amount.Decimal
		if err := currency.CheckRange(amount); err != nil {
			s.fail(rw, http.StatusBadRequest, "amount out of range")
			return
		}

		result, err := s.Service.Convert(r.Context(), amount, request.FromCurrency, request.ToCurrency)
		if errors.Is(err, exchange.ErrUnknownRate) {
			s.fail(rw, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err != nil {
			level.Error(s.Logger).Log("msg", "conversion failed", "err", err)
			s.fail(rw, http.StatusBadGateway, "failed conversion")
			return
		}

		response := response{
			Exchange: result.Rate,
			Amount:   result.Amount,
			Original: amount,
		}

		enc := json.NewEncoder(rw)
		err = enc.Encode(&response)
		if err != nil {
			level.Error(s.Logger).Log("msg", "failed json encoding", "err", err)
		}
	}
}

func (s *Server) fail(rw http.ResponseWriter, status int, msg string) {
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(map[string]string{"error": msg})
}
