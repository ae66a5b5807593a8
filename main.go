package main

import (
	"log"
	"time"

	"fmtuner/display"
	"fmtuner/radio"

	"gobot.io/x/gobot"
	"gobot.io/x/gobot/platforms/raspi"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	adaptor := raspi.NewAdaptor()

	tunerConfig := radio.TEA5767Config{
		Frequency:    98.5,
		PollInterval: 10 * time.Millisecond,
		MaxPolls:     500,
		Log:          log.Printf,
	}
	tuner, err := radio.NewTEA5767Driver(adaptor, tunerConfig)
	if err != nil {
		log.Fatalln(err)
	}

	lcd, err := display.NewLCD1602Driver(adaptor)
	if err != nil {
		log.Fatalln(err)
	}

	work := func() {
		if err = lcd.DisplayMessage("Starting the FM receiver"); err != nil {
			log.Fatalln(err)
		}

		err = tuner.On(radio.Station, func(data interface{}) {
			if res, ok := data.(radio.SearchResult); ok {
				log.Printf("Search %s at %.1f MHz after %d polls\n", res.State, res.Frequency, res.Polls)
			}
		})
		if err != nil {
			log.Fatalln(err)
		}

		// The tuner is not safe for concurrent use, so a single ticker
		// both refreshes the screen and scans.
		ticks := 0
		gobot.Every(1*time.Second, func() {
			ticks++
			if ticks%30 == 0 {
				if _, err := tuner.SearchUp(); err != nil {
					log.Println(err)
				}
			}

			status, err := tuner.ReadStatus()
			if err != nil {
				log.Println(err)
				return
			}

			if err = lcd.DisplayStatus(status.Frequency, status.Stereo, status.Level); err != nil {
				log.Println(err)
			}
		})
	}

	robot := gobot.NewRobot("FM Receiver demo",
		[]gobot.Connection{adaptor},
		[]gobot.Device{tuner, lcd},
		work,
	)

	if err = robot.Start(); err != nil {
		log.Fatalln(err)
	}
}
