package vehicle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/renault-community/renault-command/mocks"
	"github.com/renault-community/renault-command/pkg/cache"
	"github.com/renault-community/renault-command/pkg/protocol"
	"github.com/renault-community/renault-command/pkg/rest"
	"github.com/renault-community/renault-command/pkg/telemetry"
	"github.com/renault-community/renault-command/pkg/vehicle"
)

const vin = "VF1AG000164767503"

var _ = Describe("Vehicle", func() {
	var (
		ctx       context.Context
		ctrl      *gomock.Controller
		api       *mocks.VehicleAPI
		snapshots *cache.SnapshotCache
		car       *vehicle.Vehicle
	)

	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())
		api = mocks.NewVehicleAPI(ctrl)
		snapshots = cache.New(cache.DefaultTTL)
		car = vehicle.NewVehicle(api, vin, snapshots)
		DeferCleanup(ctrl.Finish)
	})

	// payload wraps attributes in the car-adapter response envelope.
	payload := func(attributes string) []byte {
		return []byte(`{"data":{"id":"` + vin + `","attributes":` + attributes + `}}`)
	}

	expectRead := func(version, resource, attributes string, times int) {
		api.EXPECT().
			GetVehicleData(gomock.Any(), vin, version, resource).
			Return(payload(attributes), nil).
			Times(times)
	}

	expectBattery := func(times int) {
		expectRead("v2", "battery-status",
			`{"timestamp":"2026-08-25T10:30:00Z","batteryLevel":72,"batteryAutonomy":245,`+
				`"plugStatus":1,"chargingStatus":1.0,"chargingRemainingTime":95}`, times)
	}
	expectCockpit := func(times int) {
		expectRead("v1", "cockpit", `{"totalMileage":23456.7}`, times)
	}
	expectHVAC := func(times int) {
		expectRead("v1", "hvac-status", `{"hvacStatus":"off","externalTemperature":8.5}`, times)
	}
	expectLocation := func(times int) {
		expectRead("v1", "location", `{"gpsLatitude":48.8566,"gpsLongitude":2.3522}`, times)
	}

	expectFleet := func(times int) {
		api.EXPECT().EnsureSession(gomock.Any()).Return(nil).Times(times)
		expectBattery(times)
		expectCockpit(times)
		expectHVAC(times)
		expectLocation(times)
	}

	Describe("Snapshot", func() {
		It("resolves the session once and fans out to all four resources", func() {
			expectFleet(1)

			snapshot, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot.VIN).To(Equal(vin))
			Expect(snapshot.Taken).To(BeTemporally("~", time.Now(), time.Second))
			Expect(snapshot.Errors.Any()).To(BeFalse())

			Expect(snapshot.Battery.Level).To(Equal(72.0))
			Expect(snapshot.Battery.Autonomy).To(Equal(245.0))
			Expect(snapshot.Battery.PluggedIn).To(BeTrue())
			Expect(snapshot.Battery.Charging).To(BeTrue())
			Expect(snapshot.Battery.RemainingTime).To(Equal(95 * time.Minute))
			Expect(snapshot.Cockpit.TotalMileage).To(Equal(23456.7))
			Expect(snapshot.HVAC.On).To(BeFalse())
			Expect(snapshot.HVAC.ExternalTemperature).To(Equal(8.5))
			Expect(snapshot.Location.Latitude).To(BeNumerically("~", 48.8566, 1e-9))
			Expect(snapshot.Location.Longitude).To(BeNumerically("~", 2.3522, 1e-9))
		})

		It("serves repeated calls from the cache", func() {
			expectFleet(1)

			first, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())

			second, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(BeIdenticalTo(first))
		})

		It("fans out again once the cached snapshot expires", func() {
			clock := clockwork.NewFakeClock()
			car = vehicle.NewVehicle(api, vin, cache.NewWithClock(cache.DefaultTTL, clock))

			expectFleet(1)
			first, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())

			clock.Advance(cache.DefaultTTL / 2)
			second, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(BeIdenticalTo(first))

			clock.Advance(cache.DefaultTTL)
			expectFleet(1)
			third, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(third).NotTo(BeIdenticalTo(first))
		})

		It("records a failed resource without failing the aggregate", func() {
			api.EXPECT().EnsureSession(gomock.Any()).Return(nil)
			expectBattery(1)
			expectCockpit(1)
			expectHVAC(1)
			api.EXPECT().
				GetVehicleData(gomock.Any(), vin, "v1", "location").
				Return(nil, &rest.HTTPError{StatusCode: http.StatusServiceUnavailable, Body: "down"})

			snapshot, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot.Location).To(BeNil())
			Expect(snapshot.Errors.Location).To(HaveOccurred())
			Expect(snapshot.Errors.Any()).To(BeTrue())
			Expect(snapshot.Errors.Unauthorized()).To(BeFalse())
			Expect(snapshot.Battery).NotTo(BeNil())
			Expect(snapshot.Cockpit).NotTo(BeNil())
			Expect(snapshot.HVAC).NotTo(BeNil())

			// A transient outage on one resource does not poison the cache.
			second, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(BeIdenticalTo(snapshot))
		})

		It("does not cache an aggregate tainted by an authorization rejection", func() {
			api.EXPECT().EnsureSession(gomock.Any()).Return(nil).Times(2)
			api.EXPECT().
				GetVehicleData(gomock.Any(), vin, "v2", "battery-status").
				Return(nil, &rest.HTTPError{StatusCode: http.StatusUnauthorized, Body: "denied"}).
				Times(2)
			expectCockpit(2)
			expectHVAC(2)
			expectLocation(2)

			first, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Errors.Unauthorized()).To(BeTrue())
			Expect(first.Battery).To(BeNil())
			Expect(first.Cockpit).NotTo(BeNil())

			second, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(BeIdenticalTo(first))
		})

		It("fails when no session can be established", func() {
			api.EXPECT().
				EnsureSession(gomock.Any()).
				Return(&protocol.AuthError{Code: 403042, Message: "invalid loginID or password"})

			_, err := car.Snapshot(ctx)
			Expect(err).To(HaveOccurred())
			Expect(protocol.IsUnauthorized(err)).To(BeTrue())
		})

		It("fetches fresh state on every call when built without a cache", func() {
			bare := vehicle.NewVehicle(api, vin, nil)
			expectFleet(2)

			first, err := bare.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := bare.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(BeIdenticalTo(first))
		})
	})

	Describe("climate commands", func() {
		It("starts preconditioning at the requested temperature", func() {
			api.EXPECT().
				PostVehicleCommand(gomock.Any(), vin, "hvac-start", gomock.Any()).
				DoAndReturn(func(_ context.Context, _, _ string, command interface{}) ([]byte, error) {
					body, err := json.Marshal(command)
					Expect(err).NotTo(HaveOccurred())
					Expect(body).To(MatchJSON(`{"data":{"type":"HvacStart","attributes":{"action":"start","targetTemperature":21.5}}}`))
					return payload(`{"action":"start"}`), nil
				})

			Expect(car.ClimateStart(ctx, 21.5)).To(Succeed())
		})

		It("cancels preconditioning without a target temperature", func() {
			api.EXPECT().
				PostVehicleCommand(gomock.Any(), vin, "hvac-start", gomock.Any()).
				DoAndReturn(func(_ context.Context, _, _ string, command interface{}) ([]byte, error) {
					body, err := json.Marshal(command)
					Expect(err).NotTo(HaveOccurred())
					Expect(body).To(MatchJSON(`{"data":{"type":"HvacStart","attributes":{"action":"cancel"}}}`))
					return payload(`{"action":"cancel"}`), nil
				})

			Expect(car.ClimateStop(ctx)).To(Succeed())
		})

		It("invalidates the cached snapshot after a command", func() {
			expectFleet(1)
			first, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())

			api.EXPECT().
				PostVehicleCommand(gomock.Any(), vin, "hvac-start", gomock.Any()).
				Return(payload(`{"action":"start"}`), nil)
			Expect(car.ClimateStart(ctx, 19)).To(Succeed())

			expectFleet(1)
			second, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(BeIdenticalTo(first))
		})

		It("invalidates the cached snapshot even when the command is rejected", func() {
			expectFleet(1)
			first, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())

			api.EXPECT().
				PostVehicleCommand(gomock.Any(), vin, "hvac-start", gomock.Any()).
				Return(nil, &rest.HTTPError{StatusCode: http.StatusBadGateway, Body: "gateway error"})
			Expect(car.ClimateStop(ctx)).NotTo(Succeed())

			expectFleet(1)
			second, err := car.Snapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(BeIdenticalTo(first))
		})
	})

	Describe("Description", func() {
		It("falls back to a record holding only the VIN", func() {
			Expect(car.Description().VIN).To(Equal(vin))
			Expect(car.Description().Model).To(BeEmpty())
		})

		It("returns attached directory metadata", func() {
			car.SetDescription(&telemetry.VehicleDescription{VIN: vin, Model: "ZOE", Brand: "RENAULT"})
			Expect(car.Description().Model).To(Equal("ZOE"))
		})
	})
})
