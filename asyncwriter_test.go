package adb

import "log"

// ExampleDevice_DoSyncLocalFile demonstrates draining an AsyncWriter's
// channels while a push runs in the background (spec.md §5 "cooperative
// facade"). Not executed by `go test` since it carries no "Output:"
// comment -- it documents the channel protocol and is compile-checked.
func ExampleDevice_DoSyncLocalFile() {
	client, err := New()
	if err != nil {
		log.Fatal(err)
	}
	dev := client.Device(AnyDevice())

	push, err := dev.DoSyncLocalFile("/data/local/tmp/goadb-push.bin", "testdata/payload.bin", 0644)
	if err != nil {
		log.Fatal(err)
	}

loop:
	for {
		select {
		case <-push.C:
			log.Printf("pushed %d/%d bytes (%.1f%%)",
				push.BytesCompleted(), push.TotalSize, 100*push.Progress())
		case <-push.DoneCopy:
			log.Print("local file fully read")
		case <-push.Done:
			if err := push.Err(); err != nil {
				log.Fatal(err)
			}
			break loop
		}
	}
}
