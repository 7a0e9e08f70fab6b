package divination

import (
	"fmt"
	"strings"
)

// Prompt templates are plain string interpolation: user-supplied fields
// (name, birth place, question) are embedded verbatim. Tests pin this down;
// see DESIGN.md before adding any escaping here.

// ChatTurn is one prior message fed back into the chat prompt.
type ChatTurn struct {
	Role    string
	Content string
}

func referenceBlock(refContext string) string {
	if refContext == "" {
		return ""
	}
	return fmt.Sprintf(`THÔNG TIN THAM KHẢO TỪ WIKIPEDIA:
%s

Hãy dựa vào thông tin tham khảo ở trên khi phù hợp để câu trả lời có căn cứ.

`, refContext)
}

func profileBlock(uc UserContext) string {
	var b strings.Builder
	if uc.Name != "" {
		fmt.Fprintf(&b, "- Tên: %s\n", uc.Name)
	}
	if uc.BirthDate != "" {
		fmt.Fprintf(&b, "- Ngày sinh: %s\n", uc.BirthDate)
	}
	if uc.BirthTime != "" {
		fmt.Fprintf(&b, "- Giờ sinh: %s\n", uc.BirthTime)
	}
	if uc.BirthPlace != "" {
		fmt.Fprintf(&b, "- Nơi sinh: %s\n", uc.BirthPlace)
	}
	return b.String()
}

// AstrologyPrompt renders the astrology instruction for one of the modes
// general, love, staranalysis or relations.
func AstrologyPrompt(mode string, uc UserContext, refContext string) string {
	var b strings.Builder
	b.WriteString("Bạn là một chuyên gia chiêm tinh học phương Tây, trả lời bằng tiếng Việt với giọng điệu ấm áp và sâu sắc.\n\n")
	b.WriteString(referenceBlock(refContext))
	b.WriteString("THÔNG TIN NGƯỜI XEM:\n")
	b.WriteString(profileBlock(uc))
	if sign := ZodiacSign(uc.BirthDate); sign != "" {
		fmt.Fprintf(&b, "- Cung hoàng đạo: %s\n", sign)
	}
	b.WriteString("\n")

	switch mode {
	case "love":
		b.WriteString("Hãy phân tích chi tiết về tình yêu và các mối quan hệ tình cảm của người này dựa trên cung hoàng đạo")
		if uc.Partner != nil {
			partnerSign := ZodiacSign(uc.Partner.BirthDate)
			fmt.Fprintf(&b, ". Người ấy tên %s, sinh ngày %s", uc.Partner.Name, uc.Partner.BirthDate)
			if partnerSign != "" {
				fmt.Fprintf(&b, " (cung %s)", partnerSign)
			}
			b.WriteString(". Phân tích độ hợp nhau của hai cung")
		}
		b.WriteString(".\n")
	case "staranalysis":
		b.WriteString("Hãy phân tích bản đồ sao của người này: vị trí Mặt Trời, Mặt Trăng và các hành tinh theo giờ và nơi sinh, cùng ý nghĩa của từng vị trí.\n")
	case "relations":
		b.WriteString("Hãy phân tích cách người này kết nối với gia đình, bạn bè và đồng nghiệp dựa trên đặc trưng cung hoàng đạo.\n")
	default:
		b.WriteString("Hãy đưa ra phân tích chiêm tinh tổng quan về tính cách, điểm mạnh, điểm yếu và xu hướng cuộc sống của người này.\n")
	}

	b.WriteString("\nTrình bày có cấu trúc với các đề mục in đậm dạng **Tiêu đề** và giữ độ dài vừa phải.")
	return b.String()
}

// FortunePrompt renders the Vietnamese horoscope instruction for one of the
// modes comprehensive, daily or yearly.
func FortunePrompt(mode string, uc UserContext, selectedDate string, refContext string) string {
	var b strings.Builder
	b.WriteString("Bạn là một thầy xem tử vi giàu kinh nghiệm theo truyền thống Việt Nam, trả lời bằng tiếng Việt.\n\n")
	b.WriteString(referenceBlock(refContext))
	b.WriteString("THÔNG TIN NGƯỜI XEM:\n")
	b.WriteString(profileBlock(uc))
	if animal := YearAnimal(uc.BirthDate); animal != "" {
		fmt.Fprintf(&b, "- Con giáp: %s\n", animal)
	}
	if canChi := CanChi(uc.BirthDate); canChi != "" {
		fmt.Fprintf(&b, "- Năm sinh Can Chi: %s\n", canChi)
	}
	b.WriteString("\n")

	switch mode {
	case "daily":
		fmt.Fprintf(&b, "Hãy luận giải tử vi ngày %s cho người này: vận trình công việc, tình cảm, tài lộc, sức khỏe, giờ tốt và màu sắc may mắn trong ngày.\n", selectedDate)
	case "yearly":
		b.WriteString("Hãy luận giải tử vi trọn năm cho người này theo từng quý: sự nghiệp, tài chính, tình duyên, sức khỏe và những tháng cần lưu ý.\n")
	default:
		b.WriteString("Hãy luận giải lá số tử vi toàn diện cho người này: mệnh, thân, ngũ hành tương sinh tương khắc, đại vận và tiểu vận.\n")
	}

	b.WriteString("\nTrình bày có cấu trúc với các đề mục in đậm dạng **Tiêu đề**.")
	return b.String()
}

// NumerologyPrompt renders the numerology reading instruction.
func NumerologyPrompt(uc UserContext, refContext string) string {
	var b strings.Builder
	b.WriteString("Bạn là một chuyên gia thần số học, trả lời bằng tiếng Việt.\n\n")
	b.WriteString(referenceBlock(refContext))
	b.WriteString("THÔNG TIN NGƯỜI XEM:\n")
	b.WriteString(profileBlock(uc))
	if n := LifePathNumber(uc.BirthDate); n != 0 {
		fmt.Fprintf(&b, "- Số chủ đạo (Life Path): %d\n", n)
	}
	if n := ExpressionNumber(uc.Name); n != 0 {
		fmt.Fprintf(&b, "- Số biểu đạt (Expression): %d\n", n)
	}
	b.WriteString("\nHãy luận giải ý nghĩa số chủ đạo và số biểu đạt của người này: tính cách, sứ mệnh, điểm mạnh, thách thức và lời khuyên phát triển bản thân.\n")
	b.WriteString("\nTrình bày có cấu trúc với các đề mục in đậm dạng **Tiêu đề**.")
	return b.String()
}

// TarotPrompt renders the tarot interpretation instruction for the drawn
// cards. mode "question" anchors the reading on the user's question.
func TarotPrompt(mode string, question string, cardsDrawn []string, uc UserContext, refContext string) string {
	var b strings.Builder
	b.WriteString("Bạn là một tarot reader chuyên nghiệp, trả lời bằng tiếng Việt với giọng điệu huyền bí nhưng gần gũi.\n\n")
	b.WriteString(referenceBlock(refContext))
	if block := profileBlock(uc); block != "" {
		b.WriteString("THÔNG TIN NGƯỜI XEM:\n")
		b.WriteString(block)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "CÁC LÁ BÀI ĐÃ RÚT: %s\n\n", strings.Join(cardsDrawn, ", "))

	if mode == "question" && question != "" {
		fmt.Fprintf(&b, "CÂU HỎI: %s\n\nHãy luận giải từng lá bài trong bối cảnh câu hỏi trên, sau đó tổng hợp thành một thông điệp chung và lời khuyên cụ thể.\n", question)
	} else {
		b.WriteString("Hãy luận giải từng lá bài theo vị trí quá khứ - hiện tại - tương lai, sau đó tổng hợp thành một thông điệp chung.\n")
	}

	b.WriteString("\nTrình bày có cấu trúc với các đề mục in đậm dạng **Tiêu đề**.")
	return b.String()
}

// ChatPrompt renders the conversational fortune-teller prompt with recent
// history replayed for context.
func ChatPrompt(message string, uc UserContext, history []ChatTurn) string {
	var b strings.Builder
	b.WriteString("Bạn là một nhà tiên tri thân thiện tên Tiên Cô, trò chuyện bằng tiếng Việt về tarot, chiêm tinh, thần số học và tử vi.\n\n")
	if block := profileBlock(uc); block != "" {
		b.WriteString("THÔNG TIN NGƯỜI DÙNG:\n")
		b.WriteString(block)
		b.WriteString("\n")
	}
	if len(history) > 0 {
		b.WriteString("CUỘC TRÒ CHUYỆN GẦN ĐÂY:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "[%s] %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "NGƯỜI DÙNG VỪA NHẮN: %s\n\nHãy trả lời tự nhiên, ngắn gọn và đúng trọng tâm câu hỏi.", message)
	return b.String()
}
