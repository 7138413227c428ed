package scraper

import (
	"rental-aggregator/models"
	"rental-aggregator/services"
)

// FallbackRegion labels feed items that match none of the requested regions.
const FallbackRegion = "GTA"

// ItemCandidate maps a feed item onto a raw candidate. Price is taken from
// the description, then the title; parking from the description.
func ItemCandidate(item models.FeedItem, city, neighborhood string) models.RawCandidate {
	price := services.ExtractPrice(item.Description)
	if price == nil {
		price = services.ExtractPrice(item.Title)
	}

	var images []string
	if item.Enclosure != "" {
		images = append(images, item.Enclosure)
	}

	raw := models.RawCandidate{
		"title":        item.Title,
		"url":          item.Link,
		"city":         city,
		"neighborhood": neighborhood,
		"parking":      services.DetectParkingMention(item.Description),
		"amenities":    []string{},
		"images":       images,
		"description":  item.Description,
		"date_found":   item.PubDate,
	}
	if price != nil {
		raw["price"] = *price
	}
	return raw
}
