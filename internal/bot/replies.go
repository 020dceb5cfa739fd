package bot

import (
	"fmt"

	"github.com/fredck/torrentbot/internal/transmission"
)

const welcomeText = "🤖 Welcome to Torrent Bot!\n\n" +
	"Send me a magnet link and I'll help you download it via Transmission.\n\n" +
	"Commands:\n" +
	"/start - Show this welcome message\n" +
	"/help - Show help information\n" +
	"/status - Check Transmission connection status"

const helpText = "📖 How to use Torrent Bot:\n\n" +
	"1. Send me a magnet link\n" +
	"2. Choose a download category from the buttons\n" +
	"3. I'll add it to Transmission for you!\n\n" +
	"Supported magnet link format:\n" +
	"magnet:?xt=urn:btih:..."

const noLinkText = "I didn't find any magnet links in your message. " +
	"Please send a valid magnet link starting with 'magnet:?'"

const chooseDestinationText = "🔍 Found magnet link!\n\n" +
	"Please choose a download location:"

const invalidSelectionText = "❌ Invalid selection"

const noPendingLinkText = "❌ No magnet link found. Please send a new one."

const submitFailedText = "❌ Failed to add torrent to Transmission.\n\n" +
	"Please check:\n" +
	"- Transmission is running and accessible\n" +
	"- Connection settings are correct\n" +
	"- The magnet link is valid"

func submitOKText(downloadDir string) string {
	return fmt.Sprintf("✅ Success!\n\n"+
		"Torrent added to Transmission\n"+
		"Download location: %s\n\n"+
		"You can check the progress in your Transmission client.", downloadDir)
}

func statusText(s transmission.Snapshot) string {
	if s.Connected {
		return fmt.Sprintf("✅ Transmission Status: Connected\n"+
			"Version: %s\n"+
			"Download directory: %s\n"+
			"Active torrents: %d", s.Version, s.DownloadDir, s.ActiveTorrents)
	}
	if s.Error != "" {
		return fmt.Sprintf("❌ Transmission Status: Error - %s", s.Error)
	}
	return "❌ Transmission Status: Disconnected"
}
