package divination

import (
	"fmt"
	"strconv"
	"strings"
)

// Term derivation for the encyclopedia lookup step. Every helper degrades to
// the zero value on malformed input instead of returning an error: a missing
// derivation just means fewer search terms.

var zodiacRanges = []struct {
	name             string
	startMonth, day1 int
	endMonth, day2   int
}{
	{"Bạch Dương", 3, 21, 4, 19},
	{"Kim Ngưu", 4, 20, 5, 20},
	{"Song Tử", 5, 21, 6, 20},
	{"Cự Giải", 6, 21, 7, 22},
	{"Sư Tử", 7, 23, 8, 22},
	{"Xử Nữ", 8, 23, 9, 22},
	{"Thiên Bình", 9, 23, 10, 22},
	{"Bọ Cạp", 10, 23, 11, 21},
	{"Nhân Mã", 11, 22, 12, 21},
	{"Ma Kết", 12, 22, 1, 19},
	{"Bảo Bình", 1, 20, 2, 18},
	{"Song Ngư", 2, 19, 3, 20},
}

var yearAnimals = []string{
	"Tý (Chuột)", "Sửu (Trâu)", "Dần (Hổ)", "Mão (Mèo)", "Thìn (Rồng)", "Tỵ (Rắn)",
	"Ngọ (Ngựa)", "Mùi (Dê)", "Thân (Khỉ)", "Dậu (Gà)", "Tuất (Chó)", "Hợi (Heo)",
}

var (
	heavenlyStems   = []string{"Canh", "Tân", "Nhâm", "Quý", "Giáp", "Ất", "Bính", "Đinh", "Mậu", "Kỷ"}
	earthlyBranches = []string{"Thân", "Dậu", "Tuất", "Hợi", "Tý", "Sửu", "Dần", "Mão", "Thìn", "Tỵ", "Ngọ", "Mùi"}
)

// Pythagorean letter values. Vietnamese diacritics are intentionally not
// mapped; only plain Latin letters count.
var letterValues = map[rune]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8, 'I': 9,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'O': 6, 'P': 7, 'Q': 8, 'R': 9,
	'S': 1, 'T': 2, 'U': 3, 'V': 4, 'W': 5, 'X': 6, 'Y': 7, 'Z': 8,
}

// parseDayMonth accepts "YYYY-MM-DD" or "DD/MM/YYYY".
func parseDayMonth(birthDate string) (month, day int, ok bool) {
	_, month, day, ok = parseDate(birthDate)
	return month, day, ok
}

func parseDate(birthDate string) (year, month, day int, ok bool) {
	var parts []string
	switch {
	case strings.Contains(birthDate, "/"):
		parts = strings.Split(birthDate, "/")
		if len(parts) != 3 {
			return 0, 0, 0, false
		}
		day, _ = strconv.Atoi(parts[0])
		month, _ = strconv.Atoi(parts[1])
		year, _ = strconv.Atoi(parts[2])
	case strings.Contains(birthDate, "-"):
		parts = strings.Split(birthDate, "-")
		if len(parts) != 3 {
			return 0, 0, 0, false
		}
		year, _ = strconv.Atoi(parts[0])
		month, _ = strconv.Atoi(parts[1])
		day, _ = strconv.Atoi(parts[2])
	default:
		return 0, 0, 0, false
	}
	if year == 0 || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// ZodiacSign maps a birth date onto the Western zodiac. Boundary dates are
// inclusive on both ends of each range.
func ZodiacSign(birthDate string) string {
	month, day, ok := parseDayMonth(birthDate)
	if !ok {
		return ""
	}
	for _, z := range zodiacRanges {
		if (month == z.startMonth && day >= z.day1) || (month == z.endMonth && day <= z.day2) {
			return z.name
		}
	}
	return ""
}

// reduceDigits repeatedly sums digits until the value is a single digit or a
// master number (11, 22, 33), which is never reduced further.
func reduceDigits(sum int) int {
	for sum > 9 && sum != 11 && sum != 22 && sum != 33 {
		next := 0
		for sum > 0 {
			next += sum % 10
			sum /= 10
		}
		sum = next
	}
	return sum
}

// LifePathNumber sums all digits of the birth date and reduces. Returns 0 when
// the date has fewer than six digits.
func LifePathNumber(birthDate string) int {
	sum := 0
	digits := 0
	for _, c := range birthDate {
		if c >= '0' && c <= '9' {
			sum += int(c - '0')
			digits++
		}
	}
	if digits < 6 {
		return 0
	}
	return reduceDigits(sum)
}

// ExpressionNumber reduces the Pythagorean values of the Latin letters in a
// name. Returns 0 for names with no countable letters.
func ExpressionNumber(name string) int {
	sum := 0
	for _, c := range strings.ToUpper(name) {
		sum += letterValues[c]
	}
	if sum == 0 {
		return 0
	}
	return reduceDigits(sum)
}

// YearAnimal returns the 12-year-cycle animal sign for the birth year.
func YearAnimal(birthDate string) string {
	year, _, _, ok := parseDate(birthDate)
	if !ok {
		return ""
	}
	return yearAnimals[((year-1900)%12+12)%12]
}

// CanChi returns the sexagenary stem-branch pair for the birth year.
func CanChi(birthDate string) string {
	year, _, _, ok := parseDate(birthDate)
	if !ok {
		return ""
	}
	return heavenlyStems[year%10] + " " + earthlyBranches[year%12]
}

// ExtractSearchTerms derives encyclopedia search terms from the user's profile
// for the given service. cardsDrawn is only consulted for tarot. Output is
// deduplicated, blank-free, and in first-seen order.
func ExtractSearchTerms(uc UserContext, service Service, cardsDrawn []string) []string {
	var terms []string

	switch service {
	case ServiceTarot:
		terms = append(terms, cardsDrawn...)
		terms = append(terms, "Tarot")

	case ServiceAstrology:
		if sign := ZodiacSign(uc.BirthDate); sign != "" {
			terms = append(terms, sign, "Cung "+sign)
		}
		terms = append(terms, "Chiêm tinh học", "Cung hoàng đạo")
		if uc.Partner != nil {
			if partnerSign := ZodiacSign(uc.Partner.BirthDate); partnerSign != "" {
				terms = append(terms, partnerSign)
			}
		}

	case ServiceNumerology:
		if n := LifePathNumber(uc.BirthDate); n != 0 {
			terms = append(terms, fmt.Sprintf("Số %d thần số học", n), fmt.Sprintf("Life Path %d", n))
		}
		if n := ExpressionNumber(uc.Name); n != 0 {
			terms = append(terms, fmt.Sprintf("Expression Number %d", n))
		}
		terms = append(terms, "Thần số học", "Numerology")

	case ServiceFortune:
		if animal := YearAnimal(uc.BirthDate); animal != "" {
			terms = append(terms, animal)
		}
		if canChi := CanChi(uc.BirthDate); canChi != "" {
			terms = append(terms, canChi)
		}
		terms = append(terms, "Tử vi", "Tử vi Đẩu Số", "Can Chi", "Ngũ hành")
	}

	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
