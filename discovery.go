package main

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"

	"github.com/rwbl/go-blesensors/ble"
	"github.com/rwbl/go-blesensors/device"
	"github.com/rwbl/go-blesensors/device/atc"
	"github.com/rwbl/go-blesensors/device/govee"
	"github.com/rwbl/go-blesensors/device/ruuvi"
	"github.com/rwbl/go-blesensors/scan"
	"github.com/rwbl/go-blesensors/utils"
)

func doDeviceDiscovery(cfg config) {
  log.Info().Msg("Starting in device discovery mode - collecting devices for 5 seconds...")

  handle, err := ble.Init(cfg.BluetoothDeviceId, ble.FlagScanTypeActive)

  if err != nil {
    log.Fatal().Err(err).Msg("Failed to initialize Bluetooth device")
  }

  ctx := ble.WrapContextWithSigHandler(
    context.WithTimeout(
      context.Background(),
      5 * time.Second,
    ),
  )

  type deviceInfo struct {
    name string
    connectable bool
    services []string
  }

  devices := make(map[string]deviceInfo)

  err = handle.ScanAll(ctx, func(a ble.Advertisement) {
    services := make(map[string]bool)

    for _, uuid := range a.Services() {
      services[uuid.String()] = true
    }

    var info deviceInfo
    var ok bool

    if info, ok = devices[a.Addr().String()]; ok {
      // merge
      if info.name == "" {
        info.name = a.LocalName()
      }
      info.connectable = a.Connectable()

      for _, uuid := range info.services {
        if _, ok := services[uuid]; !ok {
          services[uuid] = true
        }
      }

      info.services = maps.Keys(services)
    } else {
      info = deviceInfo{
        name: a.LocalName(),
        connectable: a.Connectable(),
        services: maps.Keys(services),
      }
    }

    devices[a.Addr().String()] = info

    log.Debug().
      Str("Addr", a.Addr().String()).
      Str("Name", a.LocalName()).
      Bool("Connectable", a.Connectable()).
      Strs("Services", maps.Keys(services)).
      Hex("ManufacturerData", a.ManufacturerData()).
      Msg("Received device advertisement")
  })

  if err != nil && !utils.ErrorIsAnyOf(err, context.Canceled, context.DeadlineExceeded) {
    log.Fatal().Err(err).Msg("Failed to initiate scan")
  }

  log.Info().Int("Found", len(devices)).Msg("Finished device discovery")

  for addr, data := range devices {
    log.Info().
      Str("Addr", addr).
      Str("Name", data.name).
      Bool("Connectable", data.connectable).
      Strs("Services", data.services).
      Msg("Found device")
  }
}

// doScanOnce scans for the configured duration and prints the discovered
// devices - or, with -decode, their decoded readings - as a JSON array on
// stdout, for integrations that poll by invoking the binary.
func doScanOnce(cfg config) {
  log.Info().
    Dur("TimeoutSec", cfg.ScanTimeout).
    Str("Mac", cfg.ScanMac).
    Msg("Starting one-shot scan")

  handle, err := ble.Init(cfg.BluetoothDeviceId, ble.FlagScanTypeActive)

  if err != nil {
    log.Fatal().Err(err).Msg("Failed to initialize Bluetooth device")
  }

  ctx := ble.WrapContextWithSigHandler(
    context.WithTimeout(
      context.Background(),
      cfg.ScanTimeout,
    ),
  )

  devices := make(map[string]scan.DiscoveredDevice)

  err = handle.ScanAll(ctx, func(a ble.Advertisement) {
    d := scan.FromAdvertisement(a)

    if cfg.ScanMac != "" && !strings.EqualFold(cfg.ScanMac, d.Address) {
      return
    }

    // a device usually advertises repeatedly; merge what each packet carries.
    if prev, ok := devices[d.Address]; ok {
      if d.Name == "" {
        d.Name = prev.Name
        d.LocalName = prev.LocalName
      }

      for key, payload := range prev.AdvertisementData {
        if _, ok := d.AdvertisementData[key]; !ok {
          d.AdvertisementData[key] = payload
        }
      }
    }

    devices[d.Address] = d
  })

  if err != nil && !utils.ErrorIsAnyOf(err, context.Canceled, context.DeadlineExceeded) {
    log.Fatal().Err(err).Msg("Failed to initiate scan")
  }

  log.Info().Int("Found", len(devices)).Msg("Finished one-shot scan")

  found := maps.Values(devices)

  sort.Slice(found, func(i, j int) bool {
    return found[i].Address < found[j].Address
  })

  enc := json.NewEncoder(os.Stdout)

  if !cfg.DecodeScan {
    if err := enc.Encode(found); err != nil {
      log.Fatal().Err(err).Msg("Failed to encode scan results")
    }

    return
  }

  dispatcher := device.NewDispatcher(atc.Decoder{}, govee.Decoder{}, ruuvi.Decoder{})
  readings := make([]device.Reading, 0, len(found))

  for _, d := range found {
    // a failed decode becomes an ERR entry; the rest of the batch continues.
    reading, err := dispatcher.Dispatch(d)

    if err != nil {
      log.Debug().
        Err(err).
        Stringer("Device", d).
        Msg("Decoding failed for discovered device")
    }

    readings = append(readings, reading)
  }

  if err := enc.Encode(readings); err != nil {
    log.Fatal().Err(err).Msg("Failed to encode readings")
  }
}
