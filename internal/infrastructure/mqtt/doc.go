// Package mqtt provides MQTT client connectivity for the car audio service.
//
// This package manages:
//   - Connection to the platform broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The platform uses a local MQTT broker as the IPC bus between the audio
// service and the vendor audio control HAL bridge. The broker decouples
// the service from the bridge's process lifecycle: a retained status
// topic with an LWT makes bridge death observable without polling.
//
//	caraudiod ↔ MQTT Broker ↔ audio control HAL bridge
//
// # Security Considerations
//
//   - The broker binds to the loopback interface on production images
//   - TLS is available for development setups with a remote broker
//   - Credentials are validated against broker ACL when configured
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all HAL events
//	err = client.Subscribe(mqtt.Topics{}.AllHALEvents(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Issue a request to the HAL bridge
//	topic := mqtt.Topics{}.HALRequest("audio_zones")
//	client.Publish(topic, payload, 1, false)
package mqtt
