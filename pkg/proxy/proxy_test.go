package proxy_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/renault-community/renault-command/mocks"
	"github.com/renault-community/renault-command/pkg/cache"
	"github.com/renault-community/renault-command/pkg/protocol"
	"github.com/renault-community/renault-command/pkg/proxy"
	"github.com/renault-community/renault-command/pkg/rest"
	"github.com/renault-community/renault-command/pkg/telemetry"
	"github.com/renault-community/renault-command/pkg/vehicle"
)

const (
	vin = "VF1AG000164767503"
)

var _ = Describe("Proxy", func() {
	var (
		ctrl        *gomock.Controller
		p           *proxy.Proxy
		mockAccount *mocks.ProxyAccount
		car         *mocks.ProxyVehicle
		store       *proxy.FileStateStore
	)

	sendRequest := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		rr := httptest.NewRecorder()
		p.ServeHTTP(rr, req)
		return rr
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mockAccount = mocks.NewProxyAccount(ctrl)
		car = mocks.NewProxyVehicle(ctrl)
		store = &proxy.FileStateStore{Path: filepath.Join(GinkgoT().TempDir(), "hvac.json")}
		p = proxy.New(mockAccount, cache.New(cache.DefaultTTL), store)
		DeferCleanup(func() {
			ctrl.Finish()
		})
	})

	Describe("summary", func() {
		It("merges per-resource results", func() {
			snapshot := &vehicle.Snapshot{
				VIN:     vin,
				Taken:   time.Now(),
				Battery: &telemetry.BatteryState{Level: 72, Charging: true},
				Cockpit: &telemetry.CockpitState{TotalMileage: 23456},
				HVAC:    &telemetry.HVACState{},
			}
			snapshot.Errors.Location = &rest.HTTPError{StatusCode: http.StatusServiceUnavailable}
			mockAccount.EXPECT().GetVehicle(gomock.Any(), gomock.Any()).Return(car, nil)
			car.EXPECT().Description().Return(&telemetry.VehicleDescription{VIN: vin, Model: "ZOE"})
			car.EXPECT().Snapshot(gomock.Any()).Return(snapshot, nil)

			rr := sendRequest(http.MethodGet, "/api/1/summary", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var reply struct {
				Response struct {
					Vehicle  map[string]interface{} `json:"vehicle"`
					Battery  map[string]interface{} `json:"battery"`
					Cockpit  map[string]interface{} `json:"cockpit"`
					Location map[string]interface{} `json:"location"`
				} `json:"response"`
			}
			Expect(json.Unmarshal(rr.Body.Bytes(), &reply)).To(Succeed())
			Expect(reply.Response.Vehicle["model"]).To(Equal("ZOE"))
			Expect(reply.Response.Battery["level"]).To(Equal(72.0))
			Expect(reply.Response.Cockpit["totalMileage"]).To(Equal(23456.0))
			Expect(reply.Response.Location).To(HaveKey("error"))
		})

		It("resolves the vehicle once and reuses it", func() {
			snapshot := &vehicle.Snapshot{VIN: vin, Taken: time.Now()}
			mockAccount.EXPECT().GetVehicle(gomock.Any(), gomock.Any()).Return(car, nil).Times(1)
			car.EXPECT().Description().Return(&telemetry.VehicleDescription{VIN: vin}).Times(2)
			car.EXPECT().Snapshot(gomock.Any()).Return(snapshot, nil).Times(2)

			for i := 0; i < 2; i++ {
				rr := sendRequest(http.MethodGet, "/api/1/summary", nil)
				Expect(rr.Code).To(Equal(http.StatusOK))
			}
		})

		It("reports login failures as gateway errors", func() {
			mockAccount.EXPECT().GetVehicle(gomock.Any(), gomock.Any()).
				Return(nil, &protocol.AuthError{Code: 403042, Message: "invalid loginID or password"})

			rr := sendRequest(http.MethodGet, "/api/1/summary", nil)
			Expect(rr.Code).To(Equal(http.StatusBadGateway))
			Expect(rr.Body.String()).To(ContainSubstring("invalid loginID or password"))
		})

		It("rejects POST", func() {
			rr := sendRequest(http.MethodPost, "/api/1/summary", nil)
			Expect(rr.Code).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Describe("hvac state", func() {
		BeforeEach(func() {
			mockAccount.EXPECT().GetVehicle(gomock.Any(), gomock.Any()).Return(car, nil)
			car.EXPECT().HVACState(gomock.Any()).Return(&telemetry.HVACState{On: true, ExternalTemperature: 8.5}, nil)
		})

		It("returns the live state", func() {
			rr := sendRequest(http.MethodGet, "/api/1/hvac", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var reply struct {
				Response struct {
					HVAC      map[string]interface{} `json:"hvac"`
					Requested map[string]interface{} `json:"requested"`
				} `json:"response"`
			}
			Expect(json.Unmarshal(rr.Body.Bytes(), &reply)).To(Succeed())
			Expect(reply.Response.HVAC["on"]).To(BeTrue())
			Expect(reply.Response.Requested).To(BeNil())
		})

		It("includes the countdown while a recorded run is active", func() {
			until := time.Now().Add(4 * time.Minute)
			Expect(store.Save(proxy.ControlState{ActiveUntil: until, Parameter: 21})).To(Succeed())

			rr := sendRequest(http.MethodGet, "/api/1/hvac", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var reply struct {
				Response struct {
					Requested *struct {
						ActiveUntil time.Time `json:"activeUntil"`
						Temperature float64   `json:"temperature"`
					} `json:"requested"`
				} `json:"response"`
			}
			Expect(json.Unmarshal(rr.Body.Bytes(), &reply)).To(Succeed())
			Expect(reply.Response.Requested).NotTo(BeNil())
			Expect(reply.Response.Requested.Temperature).To(Equal(21.0))
			Expect(reply.Response.Requested.ActiveUntil).To(BeTemporally("~", until, time.Second))
		})

		It("drops expired countdowns", func() {
			Expect(store.Save(proxy.ControlState{ActiveUntil: time.Now().Add(-time.Minute), Parameter: 21})).To(Succeed())

			rr := sendRequest(http.MethodGet, "/api/1/hvac", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).NotTo(ContainSubstring("requested"))
		})
	})

	Describe("hvac start", func() {
		It("issues the command and records the countdown", func() {
			mockAccount.EXPECT().GetVehicle(gomock.Any(), gomock.Any()).Return(car, nil)
			car.EXPECT().VIN().Return(vin).AnyTimes()
			car.EXPECT().ClimateStart(gomock.Any(), 21.5).Return(nil)

			rr := sendRequest(http.MethodPost, "/api/1/hvac/start", []byte(`{"temperature": 21.5}`))
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(`{"response":{"result":true,"reason":""},"error":"","error_description":""}`))

			record, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(record).NotTo(BeNil())
			Expect(record.Parameter).To(Equal(21.5))
			Expect(record.ActiveUntil).To(BeTemporally("~", time.Now().Add(p.ClimateDuration), time.Second))
		})

		It("requires a temperature", func() {
			rr := sendRequest(http.MethodPost, "/api/1/hvac/start", []byte(`{}`))
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(rr.Body.String()).To(ContainSubstring("missing temperature param"))

			record, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(record).To(BeNil())
		})

		It("rejects malformed bodies", func() {
			rr := sendRequest(http.MethodPost, "/api/1/hvac/start", []byte(`not json`))
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("passes gateway rejections through and keeps no record", func() {
			mockAccount.EXPECT().GetVehicle(gomock.Any(), gomock.Any()).Return(car, nil)
			car.EXPECT().VIN().Return(vin).AnyTimes()
			car.EXPECT().ClimateStart(gomock.Any(), 21.0).
				Return(&rest.HTTPError{StatusCode: http.StatusBadGateway, Body: `{"type":"FUNCTIONAL"}`})

			rr := sendRequest(http.MethodPost, "/api/1/hvac/start", []byte(`{"temperature": 21}`))
			Expect(rr.Code).To(Equal(http.StatusBadGateway))
			Expect(rr.Body.String()).To(ContainSubstring("FUNCTIONAL"))

			record, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(record).To(BeNil())
		})

		It("rejects GET", func() {
			rr := sendRequest(http.MethodGet, "/api/1/hvac/start", nil)
			Expect(rr.Code).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Describe("hvac stop", func() {
		It("issues the command and clears the record", func() {
			Expect(store.Save(proxy.ControlState{ActiveUntil: time.Now().Add(4 * time.Minute), Parameter: 21})).To(Succeed())
			mockAccount.EXPECT().GetVehicle(gomock.Any(), gomock.Any()).Return(car, nil)
			car.EXPECT().VIN().Return(vin).AnyTimes()
			car.EXPECT().ClimateStop(gomock.Any()).Return(nil)

			rr := sendRequest(http.MethodPost, "/api/1/hvac/stop", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(`{"response":{"result":true,"reason":""},"error":"","error_description":""}`))

			record, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(record).To(BeNil())
		})

		It("keeps the record when the command fails", func() {
			Expect(store.Save(proxy.ControlState{ActiveUntil: time.Now().Add(4 * time.Minute), Parameter: 21})).To(Succeed())
			mockAccount.EXPECT().GetVehicle(gomock.Any(), gomock.Any()).Return(car, nil)
			car.EXPECT().VIN().Return(vin).AnyTimes()
			car.EXPECT().ClimateStop(gomock.Any()).
				Return(&rest.HTTPError{StatusCode: http.StatusServiceUnavailable})

			rr := sendRequest(http.MethodPost, "/api/1/hvac/stop", nil)
			Expect(rr.Code).To(Equal(http.StatusServiceUnavailable))

			record, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(record).NotTo(BeNil())
		})
	})

	It("returns 404 for unknown paths", func() {
		rr := sendRequest(http.MethodGet, "/api/1/unknown", nil)
		Expect(rr.Code).To(Equal(http.StatusNotFound))

		rr = sendRequest(http.MethodGet, "/unknown", nil)
		Expect(rr.Code).To(Equal(http.StatusNotFound))
	})
})
