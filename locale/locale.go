// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package locale

import "net/http"

// Supported locales. Mongolian is the product default.
const (
	Mongolian = "mn"
	English   = "en"

	Default = Mongolian
)

// Key identifies one user-visible message independently of language.
// Validation and error handling work in Keys; text is only chosen at
// the response-formatting boundary.
type Key string

const (
	KeyInvalidJSON        Key = "invalidJSON"
	KeyInvalidTitle       Key = "invalidTitle"
	KeyDescriptionTooLong Key = "descriptionTooLong"
	KeyDatesRequired      Key = "datesRequired"
	KeyInvalidDate        Key = "invalidDate"
	KeyEndBeforeStart     Key = "endBeforeStart"
	KeyDuplicateDate      Key = "duplicateDate"
	KeyInvalidName        Key = "invalidName"
	KeyNameTaken          Key = "nameTaken"
	KeyInvalidStatus      Key = "invalidStatus"
	KeyInvalidDateID      Key = "invalidDateID"
	KeyNotFound           Key = "notFound"
	KeyAlreadyDeleted     Key = "alreadyDeleted"
	KeyTokenRequired      Key = "tokenRequired"
	KeyInvalidToken       Key = "invalidToken"
	KeyFieldsRequired     Key = "fieldsRequired"
	KeyAccessGranted      Key = "accessGranted"
	KeyDeviceMismatch     Key = "deviceMismatch"
	KeyResponseSubmitted  Key = "responseSubmitted"
	KeyServerError        Key = "serverError"
)

var messages = map[string]map[Key]string{
	Mongolian: {
		KeyInvalidJSON:        "Хүсэлтийн бие буруу байна",
		KeyInvalidTitle:       "Гарчиг 3-255 тэмдэгт байх ёстой",
		KeyDescriptionTooLong: "Тайлбар 500 тэмдэгтээс хэтрэхгүй",
		KeyDatesRequired:      "Дор хаяж нэг огноо шаардлагатай",
		KeyInvalidDate:        "Огнооны утга буруу байна",
		KeyEndBeforeStart:     "Дуусах цаг эхлэх цагаас хойш байх ёстой",
		KeyDuplicateDate:      "Давхардсан огноо байна",
		KeyInvalidName:        "Нэр 1-100 тэмдэгт байх ёстой",
		KeyNameTaken:          "Энэ нэр аль хэдийн ашиглагдсан байна. Өөр нэр ашиглана уу",
		KeyInvalidStatus:      "Хариултын төлөв буруу байна",
		KeyInvalidDateID:      "Огнооны сонголт энэ эвентэд хамаарахгүй байна",
		KeyNotFound:           "Эвент олдсонгүй",
		KeyAlreadyDeleted:     "Эвент аль хэдийн устгагдсан байна",
		KeyTokenRequired:      "Засварлах түлхүүр шаардлагатай",
		KeyInvalidToken:       "Засварлах түлхүүр хүчингүй байна",
		KeyFieldsRequired:     "Засварлах түлхүүр болон төхөөрөмжийн хэв шаардлагатай",
		KeyAccessGranted:      "Та энэ эвентийг засварлах боломжтой",
		KeyDeviceMismatch:     "Таны төхөөрөмж үүсгэсэн төхөөрөмжтэй таарахгүй байна",
		KeyResponseSubmitted:  "Хариулт амжилттай илгээгдлээ",
		KeyServerError:        "Серверийн алдаа гарлаа. Дахин оролдоно уу",
	},
	English: {
		KeyInvalidJSON:        "Invalid JSON",
		KeyInvalidTitle:       "Title must be between 3 and 255 characters",
		KeyDescriptionTooLong: "Description must be 500 characters or less",
		KeyDatesRequired:      "At least one date is required",
		KeyInvalidDate:        "Invalid date value",
		KeyEndBeforeStart:     "End time must be after start time",
		KeyDuplicateDate:      "Duplicate date slot",
		KeyInvalidName:        "Name is required and must be less than 100 characters",
		KeyNameTaken:          "This name has already been used. Please use a different name.",
		KeyInvalidStatus:      "Invalid response status",
		KeyInvalidDateID:      "Response refers to a date that does not belong to this event",
		KeyNotFound:           "Event not found",
		KeyAlreadyDeleted:     "Event has already been deleted",
		KeyTokenRequired:      "Edit token is required",
		KeyInvalidToken:       "Invalid edit token",
		KeyFieldsRequired:     "Edit token and fingerprint are required",
		KeyAccessGranted:      "You can edit this event",
		KeyDeviceMismatch:     "Your device does not match the device that created this event",
		KeyResponseSubmitted:  "Response submitted successfully",
		KeyServerError:        "Server error occurred. Please try again",
	},
}

// Message returns the text for key in the given locale, falling back to
// the default locale for unknown locales and to the key itself for
// unknown keys.
func Message(loc string, key Key) string {
	table, ok := messages[loc]
	if !ok {
		table = messages[Default]
	}
	if msg, ok := table[key]; ok {
		return msg
	}
	return string(key)
}

// FromRequest picks the response locale for a request: the X-Locale
// header wins, then the locale query parameter, then the default.
func FromRequest(r *http.Request) string {
	if loc := r.Header.Get("X-Locale"); loc != "" {
		if _, ok := messages[loc]; ok {
			return loc
		}
	}
	if loc := r.URL.Query().Get("locale"); loc != "" {
		if _, ok := messages[loc]; ok {
			return loc
		}
	}
	return Default
}
