package collector

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/rwbl/go-blesensors/ble"
	"github.com/rwbl/go-blesensors/collector/model"
	"github.com/rwbl/go-blesensors/device"
	"github.com/rwbl/go-blesensors/scan"
	"github.com/rs/zerolog/log"
)

func collectViaScan(
	ctx context.Context,
	handle *ble.Handle,
	devices []device.Device,
	ch chan model.DeviceResult,
) error {
	type DeviceContext struct {
		device.Device
		sync.Once
	}

	numLeft := len(devices)
  addresses := make([]net.HardwareAddr, len(devices))
  deviceMap := make(map[string]*DeviceContext)

  {
    i := 0
    for _, dev := range devices {
      addresses[i] = dev.Addr()
      deviceMap[strings.ToLower(dev.Addr().String())] = &DeviceContext{
      	Device: dev,
      }
      i += 1
    }
  }

  err := handle.ScanAddresses(ctx, addresses, func(a ble.Advertisement) bool {
    deviceCtx := deviceMap[strings.ToLower(a.Addr().String())]

    if deviceCtx == nil {
      log.Warn().
        Str("Address", a.Addr().String()).
        Str("LocalName", a.LocalName()).
        Hex("ManufacturerData", a.ManufacturerData()).
        Interface("ServiceData", a.ServiceData()).
        Msg("Received advertisement from unknown device!")

      return false
    }

    discovered := scan.FromAdvertisement(a)

    log.Trace().
      Stringer("Device", deviceCtx.Device).
      Stringer("Discovered", discovered).
      Msg("collectViaScan: received advertisement from device")

    reading, err := device.Decode(discovered, deviceCtx.Decoder())

    log.Trace().
      Err(err).
      Stringer("Reading", reading).
      Stringer("Device", deviceCtx.Device).
      Msg("collectViaScan: decoded device advertisement")

		result := model.DeviceResult{
			Device: deviceCtx.Device,
			Result: model.Result{
				Reading: reading,
				Error: err,
			},
		}

		select {
		case <-ctx.Done():
			return true // context is canceled, let's get out of the way
		case ch <- result:
		}

    deviceCtx.Do(func() {
    	numLeft -= 1
    })

    return err == nil // consider ourselves happy when there is no error decoding the advertisement
  })

  // swallow deadline exceeded errors if we got results for all devices
  if errors.Is(err, context.DeadlineExceeded) && numLeft == 0 {
    err = nil
  }

  return err
}
