package metrics

import (
  "time"

  "github.com/prometheus/client_golang/prometheus"
  "github.com/rwbl/go-blesensors/device"
)

var (
  descTemperature = prometheus.NewDesc(
    "sensor_temperature_celsius",
    "Temperature reported by the sensor in Celsius.",
    []string{"name"},
    nil,
  )

  descHumidity = prometheus.NewDesc(
    "sensor_humidity_ratio",
    "Relative humidity reported by the sensor.",
    []string{"name"},
    nil,
  )

  descAirPressure = prometheus.NewDesc(
    "sensor_air_pressure_hpa",
    "Air pressure reported by the sensor in hPa.",
    []string{"name"},
    nil,
  )

  descBattery = prometheus.NewDesc(
    "sensor_battery_ratio",
    "Battery percentage reported by the sensor. May exceed 1 for out-of-range voltages.",
    []string{"name"},
    nil,
  )

  descVoltage = prometheus.NewDesc(
    "sensor_battery_volts",
    "Battery voltage reported by the sensor.",
    []string{"name"},
    nil,
  )

  descTxStrength = prometheus.NewDesc(
    "sensor_tx_power_dbm",
    "Transmission power reported by the sensor in dBm.",
    []string{"name"},
    nil,
  )

  descMovementCounter = prometheus.NewDesc(
    "sensor_movement_count",
    "Motion detection interrupts counted by the sensor.",
    []string{"name"},
    nil,
  )

  descSequenceCounter = prometheus.NewDesc(
    "sensor_measurement_sequence_number",
    "Measurement sequence number reported by the sensor.",
    []string{"name"},
    nil,
  )
)

type CollectFunc func() (map[device.Device]device.Reading, time.Time)

type collector struct {
  CollectFunc
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
  prometheus.DescribeByCollect(c, ch)
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
  out, ts := c.CollectFunc()

  if out == nil {
    panic("collector got empty data!")
  }

  emit := func(desc *prometheus.Desc, value float64, name string) {
    metric := prometheus.MustNewConstMetric(
      desc,
      prometheus.GaugeValue,
      value,
      name,
    )

    ch <- prometheus.NewMetricWithTimestamp(ts, metric)
  }

  for device, reading := range out {
    if reading.HasTemperature {
      emit(descTemperature, reading.Temperature, device.Name())
    }

    if reading.HasHumidity {
      emit(descHumidity, float64(reading.Humidity) / 100, device.Name())
    }

    if reading.HasAirPressure {
      emit(descAirPressure, float64(reading.AirPressure), device.Name())
    }

    if reading.HasBatteryLevel {
      emit(descBattery, float64(reading.BatteryLevel) / 100, device.Name())
    }

    if reading.HasVoltage {
      emit(descVoltage, reading.Voltage, device.Name())
    }

    if reading.HasTxStrength {
      emit(descTxStrength, float64(reading.TxStrength), device.Name())
    }

    if reading.HasMovementCounter {
      emit(descMovementCounter, float64(reading.MovementCounter), device.Name())
    }

    if reading.HasSequenceCounter {
      emit(descSequenceCounter, float64(reading.SequenceCounter), device.Name())
    }
  }
}

func RegisterCollector(f CollectFunc, reg prometheus.Registerer) {
  c := &collector{f}

  reg.MustRegister(c)
}
