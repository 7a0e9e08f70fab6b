package divination

import (
	"fmt"
	"time"
)

// Breakup framing: emotional-support text layered on top of a reading when
// the profile records a recent relationship end.

var comfortingMessages = map[Service]string{
	ServiceTarot:      "💜 Các lá bài cho thấy bạn đang đi qua một giai đoạn chuyển tiếp. Chia tay không phải là kết thúc, mà là khoảng lặng để bạn trở về với chính mình. Hãy cho bản thân thời gian.",
	ServiceAstrology:  "💜 Các vì sao nhắc rằng mọi chu kỳ đều có hồi kết để mở ra chu kỳ mới. Trái tim bạn đang lành lại từng ngày, và bầu trời phía trước vẫn còn rất rộng.",
	ServiceNumerology: "💜 Những con số nói rằng giai đoạn này là một bài học, không phải một bản án. Bạn đang mạnh mẽ hơn bạn nghĩ.",
	ServiceFortune:    "💜 Vận trình có lúc thăng lúc trầm, và chia tay chỉ là một khúc quanh. Hãy giữ gìn sức khỏe và tin rằng điều tốt đẹp hơn đang chờ phía trước.",
	ServiceChat:       "💜 Mình biết khoảng thời gian này không dễ dàng với bạn. Nếu cần ai đó lắng nghe, mình luôn ở đây.",
}

// ComfortingMessage returns the fixed support suffix for a service type.
func ComfortingMessage(service Service) string {
	if msg, ok := comfortingMessages[service]; ok {
		return msg
	}
	return comfortingMessages[ServiceChat]
}

func daysSince(dateStr string, now time.Time) int {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, dateStr); err == nil {
			days := int(now.Sub(t).Hours() / 24)
			if days < 0 {
				days = 0
			}
			return days
		}
	}
	return 0
}

// AddBreakupContext appends emotionally-aware framing to an already composed
// prompt. It is a pure append: the existing prompt text is never modified.
func AddBreakupContext(prompt string, uc UserContext, now time.Time) string {
	if !uc.IsInBreakup {
		return prompt
	}

	partnerName := uc.PartnerName
	if partnerName == "" && uc.Breakup != nil {
		partnerName = uc.Breakup.PartnerName
	}

	framing := "\n\nLƯU Ý QUAN TRỌNG: Người này vừa trải qua chia tay"
	if partnerName != "" {
		framing += fmt.Sprintf(" với %s", partnerName)
	}
	if uc.Breakup != nil && uc.Breakup.BreakupDate != "" {
		framing += fmt.Sprintf(" cách đây %d ngày", daysSince(uc.Breakup.BreakupDate, now))
	}
	framing += ". Hãy trả lời với sự đồng cảm, tránh nhắc đến chuyện tình cảm một cách vô tâm, và lồng ghép sự động viên nhẹ nhàng."

	return prompt + framing
}
